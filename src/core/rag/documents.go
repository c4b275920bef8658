package rag

import (
	"fmt"
	"strings"

	"github.com/miminchandrank/Csv-data-analyst/src/core/dataset"
	"github.com/miminchandrank/Csv-data-analyst/src/core/profile"
)

// SampleRows is the number of leading rows rendered into the sample document
const SampleRows = 5

// GenerateDocuments turns a dataset and its profile into the text documents
// that get indexed: one metadata document, one per column, a missing
// values analysis and a sample of the first rows.
func GenerateDocuments(f *dataset.Frame, summary *profile.Summary) []string {
	md := summary.Metadata
	analysis := summary.Analysis

	documents := make([]string, 0, len(md.Columns)+3)
	documents = append(documents, fmt.Sprintf("Dataset Metadata:\nShape: (%d, %d)\nColumns: %s\n",
		md.Shape[0], md.Shape[1], strings.Join(md.Columns, ", ")))

	for _, name := range md.Columns {
		stats := analysis.ColumnStats[name]

		var b strings.Builder
		fmt.Fprintf(&b, "Column: %s\n", name)
		fmt.Fprintf(&b, "Data type: %s\n", md.DTypes[name])
		fmt.Fprintf(&b, "Unique values: %d\n", stats.UniqueCount)
		if stats.IsConstant {
			b.WriteString("This column has a constant value.\n")
		}
		if stats.MostFrequent != nil {
			fmt.Fprintf(&b, "Most frequent value: %s\n", *stats.MostFrequent)
		}
		if stats.MaxLength != nil {
			fmt.Fprintf(&b, "Max length: %d\n", *stats.MaxLength)
		}
		documents = append(documents, b.String())
	}

	var missing strings.Builder
	missing.WriteString("Missing Values Analysis:\n")
	for _, name := range md.Columns {
		count := analysis.MissingValues.CountByColumn[name]
		if count > 0 {
			fmt.Fprintf(&missing, "%s: %d missing values (%.2f%%)\n",
				name, count, analysis.MissingValues.PercentageByColumn[name])
		}
	}
	documents = append(documents, missing.String())

	documents = append(documents, "Sample Data (first 5 rows):\n"+f.Head(SampleRows).String())

	return documents
}
