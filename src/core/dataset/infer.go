package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	trueValues  = map[string]bool{"True": true, "TRUE": true, "true": true}
	falseValues = map[string]bool{"False": true, "FALSE": true, "false": true}

	dateLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"2006/01/02",
		"01/02/2006 15:04:05",
		"01/02/2006",
	}
)

// inferColumn decides the dtype of a raw column and fills the parsed slices.
// An all-missing column is float64, integers with gaps become float64 and
// booleans with gaps stay object.
func inferColumn(name string, raw []string, parseDates bool) *Column {
	col := &Column{
		Name:  name,
		Cells: raw,
		Nulls: make([]bool, len(raw)),
	}

	nonNull := 0
	for i, cell := range raw {
		if IsNA(cell) {
			col.Nulls[i] = true
			continue
		}
		nonNull++
	}
	hasNulls := nonNull < len(raw)

	if nonNull == 0 {
		col.DType = Float64
		col.Floats = nanSlice(len(raw))
		return col
	}

	if ints, ok := parseInts(raw, col.Nulls); ok {
		if !hasNulls {
			col.DType = Int64
			col.Ints = ints
			col.Floats = make([]float64, len(ints))
			for i, v := range ints {
				col.Floats[i] = float64(v)
			}
			return col
		}
		col.DType = Float64
		col.Floats = make([]float64, len(ints))
		for i, v := range ints {
			if col.Nulls[i] {
				col.Floats[i] = math.NaN()
				continue
			}
			col.Floats[i] = float64(v)
		}
		return col
	}

	if floats, ok := parseFloats(raw, col.Nulls); ok {
		col.DType = Float64
		col.Floats = floats
		return col
	}

	if !hasNulls {
		if bools, ok := parseBools(raw); ok {
			col.DType = Bool
			col.Floats = bools
			return col
		}
	}

	if parseDates {
		if times, ok := parseTimes(raw, col.Nulls); ok {
			col.DType = Datetime
			col.Times = times
			return col
		}
	}

	col.DType = Object
	return col
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func parseInts(raw []string, nulls []bool) ([]int64, bool) {
	out := make([]int64, len(raw))
	for i, cell := range raw {
		if nulls[i] {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func parseFloats(raw []string, nulls []bool) ([]float64, bool) {
	out := make([]float64, len(raw))
	for i, cell := range raw {
		if nulls[i] {
			out[i] = math.NaN()
			continue
		}
		s := strings.TrimSpace(cell)
		// strconv accepts hex floats and digit separators, CSV readers do not
		if strings.ContainsAny(s, "xX_") {
			return nil, false
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func parseBools(raw []string) ([]float64, bool) {
	out := make([]float64, len(raw))
	for i, cell := range raw {
		switch {
		case trueValues[cell]:
			out[i] = 1
		case falseValues[cell]:
			out[i] = 0
		default:
			return nil, false
		}
	}
	return out, true
}

func parseTimes(raw []string, nulls []bool) ([]time.Time, bool) {
	out := make([]time.Time, len(raw))
	for i, cell := range raw {
		if nulls[i] {
			continue
		}
		t, ok := parseTime(strings.TrimSpace(cell))
		if !ok {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
