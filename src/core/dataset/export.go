package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ExportFilename is the download name for processed data
const ExportFilename = "analyzed_data.csv"

// WriteCSV writes the frame as comma separated UTF-8 with a header row and
// no index column. Missing values are written as empty cells.
func WriteCSV(w io.Writer, f *Frame) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(f.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(f.columns))
	for i := 0; i < f.rows; i++ {
		for j, col := range f.columns {
			if col.IsNull(i) {
				record[j] = ""
				continue
			}
			record[j] = col.Value(i)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
