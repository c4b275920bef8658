package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miminchandrank/Csv-data-analyst/src/core/rag"
)

const salesCSV = "region,amount\nnorth,10.5\nsouth,\nnorth,7.25\n"

type countingEmbedder struct{}

func (countingEmbedder) vector(text string) []float32 {
	return []float32{float32(len(text)), float32(strings.Count(text, "Column"))}
}

func (e countingEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e countingEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

type cannedLLM struct {
	prompts []string
}

func (l *cannedLLM) Generate(_ context.Context, prompt string) (string, error) {
	l.prompts = append(l.prompts, prompt)
	return "There are 3 rows.", nil
}

func runAnalyzeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newAnalyzeCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		// nil makes cobra fall back to os.Args
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyzePrintsSummaryAndExports(t *testing.T) {
	input := writeCSV(t, salesCSV)
	exported := filepath.Join(t.TempDir(), "analyzed_data.csv")

	out, err := runAnalyzeCmd(t, input, "--export", exported)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "📊 Dataset Summary (3 rows × 2 columns)"), out)
	assert.NotContains(t, out, "Q: ")

	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Equal(t, salesCSV, string(data))
}

func TestAnalyzeAnswersQuestions(t *testing.T) {
	llm := &cannedLLM{}
	store := rag.NewMemoryStore()
	saved := buildAnalyzeSystem
	buildAnalyzeSystem = func() (*rag.System, error) {
		return rag.NewSystem(countingEmbedder{}, llm, store), nil
	}
	t.Cleanup(func() { buildAnalyzeSystem = saved })

	out, err := runAnalyzeCmd(t, writeCSV(t, salesCSV), "-q", "How many rows?", "-q", "What is the mean of amount?")
	require.NoError(t, err)

	assert.Contains(t, out, "\nQ: How many rows?\nThere are 3 rows.\n")
	assert.Contains(t, out, "\nQ: What is the mean of amount?\nThere are 3 rows.\n\n(Source: ")
	require.Len(t, llm.prompts, 2)
	assert.Contains(t, llm.prompts[0], "How many rows?")
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing file", args: []string{filepath.Join(t.TempDir(), "nope.csv")}, want: "failed to read"},
		{name: "malformed csv", args: []string{writeCSV(t, "a,b\n1,2,3\n")}, want: "failed to load csv"},
		{name: "no arguments", args: nil, want: "accepts 1 arg(s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runAnalyzeCmd(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
