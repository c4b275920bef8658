package dataset

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FormatFloat renders f the way Python's repr does: shortest round-trip
// digits, always with a fractional part in positional notation, and
// exponent notation outside [1e-4, 1e16).
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	exp := decimalExponent(f)
	if exp < -4 || exp >= 16 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func decimalExponent(f float64) int {
	s := strconv.FormatFloat(f, 'e', -1, 64)
	i := strings.LastIndexByte(s, 'e')
	exp, _ := strconv.Atoi(s[i+1:])
	return exp
}

const maxDisplayDecimals = 6

// String renders the frame as an aligned text table with a row index, the
// layout used for the sample-rows document.
func (f *Frame) String() string {
	if f.rows == 0 {
		return "Empty DataFrame\nColumns: [" + strings.Join(f.ColumnNames(), ", ") + "]\nIndex: []"
	}

	index := make([]string, f.rows)
	indexWidth := 0
	for i := range index {
		index[i] = strconv.Itoa(i)
		if w := len(index[i]); w > indexWidth {
			indexWidth = w
		}
	}

	cells := make([][]string, len(f.columns))
	widths := make([]int, len(f.columns))
	for j, col := range f.columns {
		cells[j] = displayCells(col)
		widths[j] = utf8.RuneCountInString(col.Name)
		for _, cell := range cells[j] {
			if w := utf8.RuneCountInString(cell); w > widths[j] {
				widths[j] = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", indexWidth))
	for j, col := range f.columns {
		b.WriteString("  ")
		b.WriteString(padLeft(col.Name, widths[j]))
	}
	for i := 0; i < f.rows; i++ {
		b.WriteByte('\n')
		b.WriteString(padRight(index[i], indexWidth))
		for j := range f.columns {
			b.WriteString("  ")
			b.WriteString(padLeft(cells[j][i], widths[j]))
		}
	}
	return b.String()
}

// displayCells formats a column for tabular output. Float columns share one
// number of decimals so the points line up.
func displayCells(col *Column) []string {
	out := make([]string, col.Len())
	if col.DType != Float64 {
		for i := range out {
			out[i] = col.Value(i)
		}
		return out
	}

	decimals := 1
	for i, v := range col.Floats {
		if col.Nulls[i] || math.IsInf(v, 0) {
			continue
		}
		s := FormatFloat(v)
		if strings.ContainsRune(s, 'e') {
			continue
		}
		if d := len(s) - strings.IndexByte(s, '.') - 1; d > decimals {
			decimals = d
		}
	}
	if decimals > maxDisplayDecimals {
		decimals = maxDisplayDecimals
	}

	for i, v := range col.Floats {
		switch {
		case col.Nulls[i]:
			out[i] = "NaN"
		case math.IsInf(v, 0):
			out[i] = FormatFloat(v)
		default:
			out[i] = strconv.FormatFloat(v, 'f', decimals, 64)
		}
	}
	return out
}

func padLeft(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
