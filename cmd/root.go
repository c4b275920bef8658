package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/miminchandrank/Csv-data-analyst/src/log"
)

var rootCmd = &cobra.Command{
	Use:   "csvanalyst",
	Short: "Chat with your CSV files",
	Long: `csvanalyst loads a CSV file, profiles it and answers questions about it
with a retrieval-augmented language model served by Ollama.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		development := viper.GetBool("log.development")
		if !development {
			gin.SetMode(gin.ReleaseMode)
		}
		return log.Setup(log.Options{
			Level:       viper.GetString("log.level"),
			Development: development,
		})
	},
}

func init() {
	settingDefaultConfig()
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
