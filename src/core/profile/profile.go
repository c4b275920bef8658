// Package profile computes the descriptive and data-quality profile of a dataset.
package profile

import (
	"strconv"
	"strings"

	"github.com/miminchandrank/Csv-data-analyst/src/core/dataset"
)

// Data quality issue names
const (
	IssueSpecialCharacters = "special_characters"
	IssueNumericStrings    = "numeric_strings"
	IssuePotentialOutliers = "potential_outliers"
)

// CategoricalThreshold is the unique count below which a column counts as categorical
const CategoricalThreshold = 20

// Summary is the full profile of a dataset
type Summary struct {
	Metadata Metadata `json:"metadata"`
	Analysis Analysis `json:"analysis"`
}

// Metadata describes the shape and layout of a dataset
type Metadata struct {
	Shape     [2]int            `json:"shape"`
	Columns   []string          `json:"columns"`
	DTypes    map[string]string `json:"dtypes"`
	Encoding  string            `json:"encoding"`
	Separator string            `json:"separator"`
	HasHeader bool              `json:"has_header"`
}

// Analysis holds the per-column and whole-table findings
type Analysis struct {
	MissingValues MissingValues          `json:"missing_values"`
	ColumnStats   map[string]ColumnStats `json:"column_stats"`
	DataQuality   map[string][]string    `json:"data_quality"`
	PotentialIDs  []string               `json:"potential_ids"`
	Duplicates    Duplicates             `json:"duplicates"`
}

type MissingValues struct {
	CountByColumn      map[string]int     `json:"count_by_column"`
	PercentageByColumn map[string]float64 `json:"percentage_by_column"`
	TotalMissing       int                `json:"total_missing"`
	TotalPercentage    float64            `json:"total_percentage"`
}

// ColumnStats describes a single column. MaxLength is set for text columns
// and MostFrequent whenever the column has a non-missing value.
type ColumnStats struct {
	UniqueCount   int     `json:"unique_count"`
	IsNumeric     bool    `json:"is_numeric"`
	IsCategorical bool    `json:"is_categorical"`
	IsText        bool    `json:"is_text"`
	IsDatetime    bool    `json:"is_datetime"`
	MaxLength     *int    `json:"max_length"`
	MostFrequent  *string `json:"most_frequent"`
	IsConstant    bool    `json:"is_constant"`
}

type Duplicates struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Rows       []int   `json:"rows"`
}

// Analyze profiles the frame
func Analyze(f *dataset.Frame, meta *dataset.Metadata) *Summary {
	rows, cols := f.Shape()

	md := Metadata{
		Shape:     [2]int{rows, cols},
		Columns:   f.ColumnNames(),
		DTypes:    make(map[string]string, cols),
		HasHeader: true,
	}
	if meta != nil {
		md.Encoding = meta.Encoding
		md.Separator = meta.Separator
		md.HasHeader = meta.HasHeader
	}
	for _, col := range f.Columns() {
		md.DTypes[col.Name] = string(col.DType)
	}

	return &Summary{
		Metadata: md,
		Analysis: Analysis{
			MissingValues: analyzeMissingValues(f),
			ColumnStats:   analyzeColumnStats(f),
			DataQuality:   analyzeDataQuality(f),
			PotentialIDs:  findPotentialIDs(f),
			Duplicates:    checkDuplicates(f),
		},
	}
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func analyzeMissingValues(f *dataset.Frame) MissingValues {
	mv := MissingValues{
		CountByColumn:      make(map[string]int, len(f.Columns())),
		PercentageByColumn: make(map[string]float64, len(f.Columns())),
	}
	for _, col := range f.Columns() {
		n := col.NullCount()
		mv.CountByColumn[col.Name] = n
		mv.PercentageByColumn[col.Name] = percentage(n, f.Len())
		mv.TotalMissing += n
	}
	mv.TotalPercentage = percentage(mv.TotalMissing, f.Size())
	return mv
}

// findPotentialIDs flags numeric columns with one distinct value per row and
// columns whose name looks like an identifier.
func findPotentialIDs(f *dataset.Frame) []string {
	ids := []string{}
	for _, col := range f.Columns() {
		name := strings.ToLower(col.Name)
		switch {
		case col.DType.IsNumeric() && uniqueCount(col) == f.Len():
			ids = append(ids, col.Name)
		case strings.HasSuffix(name, "id") || strings.HasPrefix(name, "id"):
			ids = append(ids, col.Name)
		}
	}
	return ids
}

// checkDuplicates marks every row equal to an earlier one. Missing values
// compare equal to each other.
func checkDuplicates(f *dataset.Frame) Duplicates {
	d := Duplicates{Rows: []int{}}
	seen := make(map[string]struct{}, f.Len())

	var b strings.Builder
	for i := 0; i < f.Len(); i++ {
		b.Reset()
		for _, col := range f.Columns() {
			// length-prefixed cells keep the key unambiguous
			if col.IsNull(i) {
				b.WriteString("-;")
				continue
			}
			v := col.Value(i)
			b.WriteString(strconv.Itoa(len(v)))
			b.WriteByte(':')
			b.WriteString(v)
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			d.Count++
			d.Rows = append(d.Rows, i)
			continue
		}
		seen[key] = struct{}{}
	}

	d.Percentage = percentage(d.Count, f.Len())
	return d
}
