package dataset_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/miminchandrank/Csv-data-analyst/src/core/dataset"
)

func load(t *testing.T, text string, opts ...dataset.Option) (*dataset.Frame, *dataset.Metadata) {
	t.Helper()
	f, meta, err := dataset.Load(strings.NewReader(text), opts...)
	require.NoError(t, err)
	return f, meta
}

func TestLoadInfersDTypes(t *testing.T) {
	f, meta := load(t, "id,price,qty,active,name,empty\n1,9.5,3,True,apple,\n2,10,,False,pear,\n3,11.25,7,true,fig,\n")

	rows, cols := f.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 6, cols)
	assert.Equal(t, ",", meta.Separator)
	assert.Equal(t, dataset.EncodingASCII, meta.Encoding)
	assert.True(t, meta.HasHeader)

	tests := []struct {
		column string
		want   dataset.DType
	}{
		{"id", dataset.Int64},
		{"price", dataset.Float64},
		{"qty", dataset.Float64}, // integers with a gap
		{"active", dataset.Bool},
		{"name", dataset.Object},
		{"empty", dataset.Float64},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			col, ok := f.Column(tt.column)
			require.True(t, ok)
			assert.Equal(t, tt.want, col.DType)
		})
	}

	qty, _ := f.Column("qty")
	assert.Equal(t, 1, qty.NullCount())
	assert.Equal(t, "3.0", qty.Value(0))
	assert.Equal(t, "NaN", qty.Value(1))
}

func TestLoadMissingMarkers(t *testing.T) {
	f, _ := load(t, "a,b\nNA,x\nnull,N/A\n5,None\n")

	a, _ := f.Column("a")
	b, _ := f.Column("b")
	assert.Equal(t, 2, a.NullCount())
	assert.Equal(t, dataset.Float64, a.DType)
	assert.Equal(t, 2, b.NullCount())
	assert.Equal(t, dataset.Object, b.DType)
}

func TestLoadBoolWithGapStaysObject(t *testing.T) {
	f, _ := load(t, "flag\nTrue\n\nFalse\n")
	// the blank line is skipped, so there is no gap
	flag, _ := f.Column("flag")
	assert.Equal(t, dataset.Bool, flag.DType)

	f, _ = load(t, "flag,n\nTrue,1\n,2\nFalse,3\n")
	flag, _ = f.Column("flag")
	assert.Equal(t, dataset.Object, flag.DType)
}

func TestLoadParseDates(t *testing.T) {
	text := "when,n\n2024-01-02,1\n2024-02-03 10:11:12,2\n"

	f, _ := load(t, text)
	when, _ := f.Column("when")
	assert.Equal(t, dataset.Object, when.DType)

	f, _ = load(t, text, dataset.WithParseDates())
	when, _ = f.Column("when")
	assert.Equal(t, dataset.Datetime, when.DType)
	assert.Equal(t, "2024-02-03 10:11:12", when.Value(1))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", dataset.ErrEmptyFile},
		{"whitespace", " \n\n", dataset.ErrEmptyFile},
		{"too many fields", "a,b\n1,2\n3,4,5\n", dataset.ErrMalformedRow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := dataset.Load(strings.NewReader(tt.text))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadPadsShortRows(t *testing.T) {
	f, _ := load(t, "a,b,c\n1,2\n3,4,5\n")
	c, _ := f.Column("c")
	assert.True(t, c.IsNull(0))
	assert.Equal(t, dataset.Float64, c.DType)
}

func TestLoadDuplicateAndBlankHeaders(t *testing.T) {
	f, _ := load(t, "a,a,,a\n1,2,3,4\n")
	assert.Equal(t, []string{"a", "a.1", "Unnamed: 2", "a.2"}, f.ColumnNames())
}

func TestDetectSeparator(t *testing.T) {
	tests := []struct {
		name string
		text string
		want rune
	}{
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"semicolon", "a;b;c\n1,5;2;3\n", ';'},
		{"tab", "a\tb\n1\t2\n", '\t'},
		{"pipe", "a|b|c\n1|2|3\n", '|'},
		{"single column", "value\n1\n2\n", ','},
		{"quoted commas", "a;b\n\"x,y,z\";2\n\"p,q,r\";3\n", ';'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dataset.DetectSeparator(tt.text))
		})
	}
}

func TestDetectEncodingAndDecode(t *testing.T) {
	latin, err := charmap.Windows1252.NewEncoder().String("name\ncafé\n")
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"ascii", []byte("a,b\n1,2\n"), dataset.EncodingASCII},
		{"utf8", []byte("name\ncafé\n"), dataset.EncodingUTF8},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("name\ncafé\n")...), dataset.EncodingUTF8BOM},
		{"utf16le bom", []byte{0xFF, 0xFE, 'n', 0}, dataset.EncodingUTF16LE},
		{"cp1252", []byte(latin), dataset.EncodingCP1252},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dataset.DetectEncoding(tt.data))
		})
	}

	f, meta, err := dataset.Load(bytes.NewReader([]byte(latin)))
	require.NoError(t, err)
	assert.Equal(t, dataset.EncodingCP1252, meta.Encoding)
	name, _ := f.Column("name")
	assert.Equal(t, "café", name.Value(0))

	f, _, err = dataset.Load(bytes.NewReader(append([]byte{0xEF, 0xBB, 0xBF}, []byte("name\nx\n")...)))
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, f.ColumnNames())
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3, "3.0"},
		{3.5, "3.5"},
		{0.1, "0.1"},
		{1234567, "1234567.0"},
		{1e16, "1e+16"},
		{0.00001, "1e-05"},
		{-2.25, "-2.25"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, dataset.FormatFloat(tt.in))
		})
	}
}

func TestFrameString(t *testing.T) {
	f, _ := load(t, "name,score\nann,1.5\nbob,\nchristopher,10\n")

	want := strings.Join([]string{
		"          name  score",
		"0          ann    1.5",
		"1          bob    NaN",
		"2  christopher   10.0",
	}, "\n")
	assert.Equal(t, want, f.String())

	empty, _ := load(t, "a,b\n")
	assert.Equal(t, "Empty DataFrame\nColumns: [a, b]\nIndex: []", empty.String())
}

func TestHead(t *testing.T) {
	f, _ := load(t, "n\n1\n2\n3\n4\n5\n6\n7\n")
	head := f.Head(5)
	assert.Equal(t, 5, head.Len())
	assert.Equal(t, 7, f.Len())
	assert.Equal(t, []string{"5"}, head.Row(4))
	assert.Equal(t, 7, f.Head(10).Len())
}

func TestWriteCSV(t *testing.T) {
	f, _ := load(t, "name;score;note\nann;1.5;\"hi, there\"\nbob;;NA\n")

	var buf bytes.Buffer
	require.NoError(t, dataset.WriteCSV(&buf, f))
	assert.Equal(t, "name,score,note\nann,1.5,\"hi, there\"\nbob,,\n", buf.String())
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{dataset.ErrEmptyFile, "no columns to parse from file"},
		{dataset.ErrNoColumns, "csv file has no header row"},
		{dataset.ErrMalformedRow, "malformed csv row"},
		{dataset.ErrColumnLengths, "columns have different lengths"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}
