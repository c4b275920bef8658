package profile

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/miminchandrank/Csv-data-analyst/src/core/dataset"
)

// missingText is how a missing value reads once a column is stringified
const missingText = "nan"

func analyzeColumnStats(f *dataset.Frame) map[string]ColumnStats {
	stats := make(map[string]ColumnStats, len(f.Columns()))
	for _, col := range f.Columns() {
		unique := uniqueCount(col)
		cs := ColumnStats{
			UniqueCount:   unique,
			IsNumeric:     col.DType.IsNumeric(),
			IsCategorical: unique < CategoricalThreshold,
			IsText:        col.DType == dataset.Object,
			IsDatetime:    col.DType == dataset.Datetime,
			IsConstant:    unique == 1,
		}
		if cs.IsText {
			n := maxLength(col)
			cs.MaxLength = &n
		}
		if mode, ok := mostFrequent(col); ok {
			cs.MostFrequent = &mode
		}
		stats[col.Name] = cs
	}
	return stats
}

func uniqueCount(col *dataset.Column) int {
	seen := make(map[string]struct{})
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		seen[col.Value(i)] = struct{}{}
	}
	return len(seen)
}

// maxLength is the longest value in code points, with missing values counted as "nan"
func maxLength(col *dataset.Column) int {
	longest := 0
	for i := 0; i < col.Len(); i++ {
		n := utf8.RuneCountInString(missingText)
		if !col.IsNull(i) {
			n = utf8.RuneCountInString(col.Cells[i])
		}
		if n > longest {
			longest = n
		}
	}
	return longest
}

// mostFrequent returns the mode of the non-missing values. Ties go to the
// smallest value in the column's natural order.
func mostFrequent(col *dataset.Column) (string, bool) {
	counts := make(map[string]int)
	first := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		v := col.Value(i)
		if _, ok := counts[v]; !ok {
			first[v] = i
		}
		counts[v]++
	}
	if len(counts) == 0 {
		return "", false
	}

	best := -1
	var candidates []int
	for v, n := range counts {
		switch {
		case n > best:
			best = n
			candidates = append(candidates[:0], first[v])
		case n == best:
			candidates = append(candidates, first[v])
		}
	}

	sort.Slice(candidates, func(a, b int) bool {
		return less(col, candidates[a], candidates[b])
	})
	return col.Value(candidates[0]), true
}

func less(col *dataset.Column, i, j int) bool {
	switch {
	case col.DType.IsNumeric():
		return col.Floats[i] < col.Floats[j]
	case col.DType == dataset.Datetime:
		return col.Times[i].Before(col.Times[j])
	default:
		return col.Cells[i] < col.Cells[j]
	}
}

// Quantile returns the q-th quantile of sorted using linear interpolation
// between closest ranks. It returns NaN for an empty slice.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func analyzeDataQuality(f *dataset.Frame) map[string][]string {
	issues := make(map[string][]string)
	for _, col := range f.Columns() {
		var found []string
		if col.DType == dataset.Object {
			if anyCell(col, hasSpecialCharacters) {
				found = append(found, IssueSpecialCharacters)
			}
			if anyCell(col, isDigits) {
				found = append(found, IssueNumericStrings)
			}
		}
		if (col.DType == dataset.Int64 || col.DType == dataset.Float64) && hasOutliers(col) {
			found = append(found, IssuePotentialOutliers)
		}
		if len(found) > 0 {
			issues[col.Name] = found
		}
	}
	return issues
}

func anyCell(col *dataset.Column, pred func(string) bool) bool {
	for i := 0; i < col.Len(); i++ {
		if !col.IsNull(i) && pred(col.Cells[i]) {
			return true
		}
	}
	return false
}

// hasSpecialCharacters reports a rune that is neither an ASCII letter or
// digit nor whitespace
func hasSpecialCharacters(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case unicode.IsSpace(r):
		default:
			return true
		}
	}
	return false
}

// isDigits reports a non-empty string made only of decimal digits; one
// trailing newline is tolerated
func isDigits(s string) bool {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// hasOutliers applies the 1.5 IQR rule
func hasOutliers(col *dataset.Column) bool {
	values := make([]float64, 0, col.Len())
	for i, v := range col.Floats {
		if col.IsNull(i) {
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return false
	}
	sort.Float64s(values)

	q1 := Quantile(values, 0.25)
	q3 := Quantile(values, 0.75)
	iqr := q3 - q1
	lower, upper := q1-1.5*iqr, q3+1.5*iqr

	return values[0] < lower || values[len(values)-1] > upper
}
