package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrEmptyFile     = errors.New("no columns to parse from file")
	ErrNoColumns     = errors.New("csv file has no header row")
	ErrMalformedRow  = errors.New("malformed csv row")
	ErrColumnLengths = errors.New("columns have different lengths")
)

// DType names a column's inferred storage type. The names follow pandas so
// that profiles and generated documents read the same way.
type DType string

const (
	Int64    DType = "int64"
	Float64  DType = "float64"
	Bool     DType = "bool"
	Datetime DType = "datetime64[ns]"
	Object   DType = "object"
)

// IsNumeric reports whether values of the type take part in arithmetic
func (d DType) IsNumeric() bool {
	return d == Int64 || d == Float64 || d == Bool
}

// Column holds one CSV column. Cells keeps the raw text, Floats is filled for
// numeric types, Ints for int64 and Times for datetime.
type Column struct {
	Name   string
	DType  DType
	Cells  []string
	Nulls  []bool
	Floats []float64
	Ints   []int64
	Times  []time.Time
}

// Len returns the number of values in the column
func (c *Column) Len() int {
	return len(c.Cells)
}

// IsNull reports whether the i-th value is missing
func (c *Column) IsNull(i int) bool {
	return c.Nulls[i]
}

// NullCount returns the number of missing values
func (c *Column) NullCount() int {
	n := 0
	for _, null := range c.Nulls {
		if null {
			n++
		}
	}
	return n
}

// Value renders the i-th value the way it is displayed and exported.
// Missing values render as "NaN".
func (c *Column) Value(i int) string {
	if c.Nulls[i] {
		return "NaN"
	}
	switch c.DType {
	case Int64:
		return strconv.FormatInt(c.Ints[i], 10)
	case Float64:
		return FormatFloat(c.Floats[i])
	case Bool:
		if c.Floats[i] != 0 {
			return "True"
		}
		return "False"
	case Datetime:
		return c.Times[i].Format("2006-01-02 15:04:05")
	default:
		return c.Cells[i]
	}
}

// Frame is an immutable, column-oriented table loaded from CSV
type Frame struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewFrame builds a frame from columns of equal length
func NewFrame(columns []*Column) (*Frame, error) {
	f := &Frame{
		columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if i == 0 {
			f.rows = col.Len()
		} else if col.Len() != f.rows {
			return nil, fmt.Errorf("%w: column %q has %d values, expected %d", ErrColumnLengths, col.Name, col.Len(), f.rows)
		}
		f.index[col.Name] = i
	}
	return f, nil
}

// Shape returns the number of rows and columns
func (f *Frame) Shape() (rows, cols int) {
	return f.rows, len(f.columns)
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return f.rows
}

// Size returns the number of cells
func (f *Frame) Size() int {
	return f.rows * len(f.columns)
}

func (f *Frame) Columns() []*Column {
	return f.columns
}

func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.columns))
	for i, col := range f.columns {
		names[i] = col.Name
	}
	return names
}

func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.columns[i], true
}

// Row returns the display values of the i-th row
func (f *Frame) Row(i int) []string {
	row := make([]string, len(f.columns))
	for j, col := range f.columns {
		row[j] = col.Value(i)
	}
	return row
}

// Head returns a frame holding the first n rows
func (f *Frame) Head(n int) *Frame {
	if n > f.rows {
		n = f.rows
	}
	if n < 0 {
		n = 0
	}

	columns := make([]*Column, len(f.columns))
	for j, col := range f.columns {
		head := &Column{
			Name:  col.Name,
			DType: col.DType,
			Cells: col.Cells[:n],
			Nulls: col.Nulls[:n],
		}
		if col.Floats != nil {
			head.Floats = col.Floats[:n]
		}
		if col.Ints != nil {
			head.Ints = col.Ints[:n]
		}
		if col.Times != nil {
			head.Times = col.Times[:n]
		}
		columns[j] = head
	}

	head, _ := NewFrame(columns)
	return head
}
