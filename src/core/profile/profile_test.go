package profile_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miminchandrank/Csv-data-analyst/src/core/dataset"
	"github.com/miminchandrank/Csv-data-analyst/src/core/profile"
)

const sales = `order_id,region,amount,units,note
1,north,10.5,1,ok
2,south,11.0,2,needs review!
3,north,9.5,2,
4,east,10.0,3,ok
5,north,500.0,2,123
4,east,10.0,3,ok
`

func analyze(t *testing.T, text string) *profile.Summary {
	t.Helper()
	f, meta, err := dataset.Load(strings.NewReader(text))
	require.NoError(t, err)
	return profile.Analyze(f, meta)
}

func TestAnalyzeMetadata(t *testing.T) {
	s := analyze(t, sales)

	assert.Equal(t, [2]int{6, 5}, s.Metadata.Shape)
	assert.Equal(t, []string{"order_id", "region", "amount", "units", "note"}, s.Metadata.Columns)
	assert.Equal(t, map[string]string{
		"order_id": "int64",
		"region":   "object",
		"amount":   "float64",
		"units":    "int64",
		"note":     "object",
	}, s.Metadata.DTypes)
	assert.Equal(t, dataset.EncodingASCII, s.Metadata.Encoding)
	assert.Equal(t, ",", s.Metadata.Separator)
	assert.True(t, s.Metadata.HasHeader)
}

func TestAnalyzeMissingValues(t *testing.T) {
	mv := analyze(t, sales).Analysis.MissingValues

	assert.Equal(t, 1, mv.CountByColumn["note"])
	assert.Equal(t, 0, mv.CountByColumn["amount"])
	assert.InDelta(t, 100.0/6, mv.PercentageByColumn["note"], 1e-9)
	assert.Equal(t, 1, mv.TotalMissing)
	assert.InDelta(t, 100.0/30, mv.TotalPercentage, 1e-9)
}

func TestAnalyzeColumnStats(t *testing.T) {
	stats := analyze(t, sales).Analysis.ColumnStats

	region := stats["region"]
	assert.Equal(t, 3, region.UniqueCount)
	assert.True(t, region.IsText)
	assert.True(t, region.IsCategorical)
	assert.False(t, region.IsNumeric)
	require.NotNil(t, region.MaxLength)
	assert.Equal(t, 5, *region.MaxLength)
	require.NotNil(t, region.MostFrequent)
	assert.Equal(t, "north", *region.MostFrequent)

	// a missing note reads as "nan"; the longest value wins
	note := stats["note"]
	require.NotNil(t, note.MaxLength)
	assert.Equal(t, len("needs review!"), *note.MaxLength)

	units := stats["units"]
	assert.True(t, units.IsNumeric)
	assert.Nil(t, units.MaxLength)
	assert.Equal(t, "2", *units.MostFrequent)
	assert.False(t, units.IsConstant)

	amount := stats["amount"]
	assert.Equal(t, "10.0", *amount.MostFrequent)
}

func TestMostFrequentTiesAndEmpty(t *testing.T) {
	stats := analyze(t, "n,s,blank\n3,b,\n1,a,\n3,b,\n1,a,\n").Analysis.ColumnStats

	assert.Equal(t, "1", *stats["n"].MostFrequent)
	assert.Equal(t, "a", *stats["s"].MostFrequent)
	assert.Nil(t, stats["blank"].MostFrequent)
	assert.Equal(t, 0, stats["blank"].UniqueCount)
}

func TestAnalyzeConstantColumn(t *testing.T) {
	stats := analyze(t, "k,v\nx,1\nx,2\n").Analysis.ColumnStats
	assert.True(t, stats["k"].IsConstant)
	assert.False(t, stats["v"].IsConstant)
}

func TestAnalyzeDataQuality(t *testing.T) {
	quality := analyze(t, sales).Analysis.DataQuality

	assert.Equal(t, []string{profile.IssueSpecialCharacters, profile.IssueNumericStrings}, quality["note"])
	assert.Equal(t, []string{profile.IssuePotentialOutliers}, quality["amount"])
	assert.NotContains(t, quality, "region")
	assert.NotContains(t, quality, "units")
}

func TestSpecialCharactersUseASCIIAlphanumerics(t *testing.T) {
	quality := analyze(t, "plain,accent,spaced\nabc,café,a b\n").Analysis.DataQuality

	assert.NotContains(t, quality, "plain")
	assert.NotContains(t, quality, "spaced")
	assert.Equal(t, []string{profile.IssueSpecialCharacters}, quality["accent"])
}

func TestFindPotentialIDs(t *testing.T) {
	s := analyze(t, "order_id,ID_code,paid,seq,label\n1,a,1,10,x\n1,b,2,20,y\n1,c,3,30,x\n")

	// seq is unique and numeric; the others match by name
	assert.Equal(t, []string{"order_id", "ID_code", "paid", "seq"}, s.Analysis.PotentialIDs)
}

func TestCheckDuplicates(t *testing.T) {
	d := analyze(t, "a,b\n1,\n2,x\n1,\n2,x\n3,y\n").Analysis.Duplicates

	assert.Equal(t, 2, d.Count)
	assert.Equal(t, []int{2, 3}, d.Rows)
	assert.InDelta(t, 40.0, d.Percentage, 1e-9)
}

func TestCheckDuplicatesComparesWholeCells(t *testing.T) {
	sep := "\x1f"
	d := analyze(t, "a,b\n"+"x"+sep+"y,z\n"+"x,y"+sep+"z\n").Analysis.Duplicates

	assert.Zero(t, d.Count)
	assert.Empty(t, d.Rows)
}

func TestEmptyDatasetHasZeroPercentages(t *testing.T) {
	s := analyze(t, "a,b\n")

	assert.Equal(t, [2]int{0, 2}, s.Metadata.Shape)
	assert.Zero(t, s.Analysis.MissingValues.TotalPercentage)
	assert.Zero(t, s.Analysis.Duplicates.Percentage)
	assert.Empty(t, s.Analysis.Duplicates.Rows)
}

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	tests := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{1, 4},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, profile.Quantile(values, tt.q), 1e-12)
	}
	assert.True(t, math.IsNaN(profile.Quantile(nil, 0.5)))
}

func TestSummaryText(t *testing.T) {
	s := analyze(t, "a,b,c,d,e,f\n1,x,2.5,y,z,True\n")

	want := strings.Join([]string{
		"📊 Dataset Summary (1 rows × 6 columns)",
		"",
		"🔡 Columns (6 total):",
		"a, b, c, d, e...",
		"",
		"📝 Data Types:",
		"- int64: 1 columns",
		"- object: 3 columns",
		"- float64: 1 columns",
		"- bool: 1 columns",
	}, "\n")
	assert.Equal(t, want, s.Text())

	var nilSummary *profile.Summary
	assert.Equal(t, "Error: Invalid summary format", nilSummary.Text())
}
