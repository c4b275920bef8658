package main

import (
	"os"

	"github.com/miminchandrank/Csv-data-analyst/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
