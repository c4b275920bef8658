package rag_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"

	"github.com/miminchandrank/Csv-data-analyst/src/core/dataset"
	"github.com/miminchandrank/Csv-data-analyst/src/core/profile"
	"github.com/miminchandrank/Csv-data-analyst/src/core/rag"
)

var vocabulary = []string{"metadata", "column", "missing", "sample", "score"}

// keywordEmbedder counts vocabulary words, which is enough to make retrieval predictable
type keywordEmbedder struct {
	texts []string
	err   error
}

func (e *keywordEmbedder) embed(text string) []float32 {
	text = strings.ToLower(text)
	v := make([]float32, len(vocabulary))
	for i, word := range vocabulary {
		v[i] = float32(strings.Count(text, word))
	}
	return v
}

func (e *keywordEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.texts = append(e.texts, texts...)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.embed(t)
	}
	return out, nil
}

func (e *keywordEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

type fakeLLM struct {
	prompt string
	reply  string
	err    error
}

func (l *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	l.prompt = prompt
	return l.reply, l.err
}

func TestGenerateDocuments(t *testing.T) {
	f, meta, err := dataset.Load(strings.NewReader("name,score,k\nann,1.5,x\nbob,,x\nann,3.0,x\n"))
	require.NoError(t, err)

	docs := rag.GenerateDocuments(f, profile.Analyze(f, meta))

	require.Len(t, docs, 6)
	assert.Equal(t, "Dataset Metadata:\nShape: (3, 3)\nColumns: name, score, k\n", docs[0])
	assert.Equal(t, "Column: name\nData type: object\nUnique values: 2\nMost frequent value: ann\nMax length: 3\n", docs[1])
	assert.Equal(t, "Column: score\nData type: float64\nUnique values: 2\nMost frequent value: 1.5\n", docs[2])
	assert.Equal(t, "Column: k\nData type: object\nUnique values: 1\nThis column has a constant value.\nMost frequent value: x\nMax length: 1\n", docs[3])
	assert.Equal(t, "Missing Values Analysis:\nscore: 1 missing values (33.33%)\n", docs[4])
	assert.Equal(t, "Sample Data (first 5 rows):\n"+f.String(), docs[5])
	assert.Contains(t, docs[5], "NaN")
}

func TestGenerateDocumentsSampleIsFirstFiveRows(t *testing.T) {
	f, meta, err := dataset.Load(strings.NewReader("n\n1\n2\n3\n4\n5\n6\n7\n"))
	require.NoError(t, err)

	docs := rag.GenerateDocuments(f, profile.Analyze(f, meta))
	sample := docs[len(docs)-1]

	assert.Equal(t, "Missing Values Analysis:\n", docs[len(docs)-2])
	assert.Equal(t, "Sample Data (first 5 rows):\n"+f.Head(5).String(), sample)
	assert.NotContains(t, sample, "6")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := rag.NewMemoryStore()

	_, err := store.Search(ctx, "Missing", []float32{0}, 1)
	assert.ErrorIs(t, err, rag.ErrCollectionNotFound)
	assert.ErrorIs(t, store.Add(ctx, "Missing", nil, nil), rag.ErrCollectionNotFound)

	require.NoError(t, store.Reset(ctx, "Sales"))
	docs := []schema.Document{{PageContent: "far"}, {PageContent: "near"}, {PageContent: "middle"}}
	vectors := [][]float32{{10, 0}, {1, 0}, {3, 4}}
	require.NoError(t, store.Add(ctx, "Sales", docs, vectors))

	got, err := store.Search(ctx, "Sales", []float32{0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "near", got[0].PageContent)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
	assert.Equal(t, "middle", got[1].PageContent)
	assert.InDelta(t, 25.0, got[1].Score, 1e-6)

	got, err = store.Search(ctx, "Sales", []float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	assert.ErrorIs(t, store.Add(ctx, "Sales", docs[:1], nil), rag.ErrVectorCount)
	assert.ErrorIs(t, store.Add(ctx, "Sales", docs[:1], [][]float32{{1, 2, 3}}), rag.ErrDimensionMismatch)
	_, err = store.Search(ctx, "Sales", []float32{1}, 1)
	assert.ErrorIs(t, err, rag.ErrDimensionMismatch)

	require.NoError(t, store.Reset(ctx, "Sales"))
	got, err = store.Search(ctx, "Sales", []float32{0, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, store.Drop(ctx, "Sales"))
	require.NoError(t, store.Drop(ctx, "Sales"))
	_, err = store.Search(ctx, "Sales", []float32{0, 0}, 1)
	assert.ErrorIs(t, err, rag.ErrCollectionNotFound)
}

func TestAnswerBeforePrepare(t *testing.T) {
	llm := &fakeLLM{reply: "unused"}
	system := rag.NewSystem(&keywordEmbedder{}, llm, rag.NewMemoryStore())

	answer, err := system.Answer(context.Background(), "how many rows?")
	require.NoError(t, err)
	assert.Equal(t, rag.NotInitialized, answer.Answer)
	assert.Empty(t, answer.SourceDocuments)
	assert.NotNil(t, answer.SourceDocuments)
	assert.Empty(t, llm.prompt)
	assert.False(t, system.Prepared())
}

func TestPrepareAndAnswer(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: "  Column score has missing values.\n"}
	system := rag.NewSystem(&keywordEmbedder{}, llm, rag.NewMemoryStore())

	docs := []string{"metadata", "column a", "column b", "missing values", "sample rows", "metadata again"}
	require.NoError(t, system.Prepare(ctx, "Dataset1", docs, nil))
	assert.True(t, system.Prepared())

	answer, err := system.Answer(ctx, "what is missing?")
	require.NoError(t, err)

	assert.Equal(t, "Column score has missing values.", answer.Answer)
	assert.Equal(t, []string{"missing values", "metadata", "column a", "column b"}, answer.SourceDocuments)

	assert.True(t, strings.HasPrefix(llm.prompt, "Use the following context to answer the question at the end. \n"))
	assert.Contains(t, llm.prompt, "Context: missing values\n\nmetadata\n\ncolumn a\n\ncolumn b\n\n")
	assert.True(t, strings.HasSuffix(llm.prompt, "Question: what is missing?\n        Answer:"))
}

func TestPrepareReportsProgress(t *testing.T) {
	docs := make([]string, 10)
	for i := range docs {
		docs[i] = "column"
	}

	var calls [][2]int
	system := rag.NewSystem(&keywordEmbedder{}, &fakeLLM{}, rag.NewMemoryStore())
	err := system.Prepare(context.Background(), "Dataset1", docs, func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})

	require.NoError(t, err)
	assert.Equal(t, [][2]int{{8, 10}, {10, 10}}, calls)
}

func TestPrepareSplitsLongDocuments(t *testing.T) {
	embedder := &keywordEmbedder{}
	system := rag.NewSystem(embedder, &fakeLLM{}, rag.NewMemoryStore(), rag.WithChunking(50, 10))

	long := strings.Repeat("word ", 40)
	require.NoError(t, system.Prepare(context.Background(), "Dataset1", []string{"short\n", long}, nil))

	require.Greater(t, len(embedder.texts), 2)
	assert.Equal(t, "short\n", embedder.texts[0])
	for _, text := range embedder.texts[1:] {
		assert.LessOrEqual(t, utf8.RuneCountInString(text), 50)
	}
}

func TestPrepareFailures(t *testing.T) {
	ctx := context.Background()

	system := rag.NewSystem(&keywordEmbedder{}, &fakeLLM{}, rag.NewMemoryStore())
	assert.ErrorIs(t, system.Prepare(ctx, "Dataset1", nil, nil), rag.ErrNoDocuments)

	boom := errors.New("embedding backend down")
	system = rag.NewSystem(&keywordEmbedder{err: boom}, &fakeLLM{}, rag.NewMemoryStore())
	assert.ErrorIs(t, system.Prepare(ctx, "Dataset1", []string{"metadata"}, nil), boom)
	assert.False(t, system.Prepared())
}

func TestAnswerGenerationError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("model not loaded")
	system := rag.NewSystem(&keywordEmbedder{}, &fakeLLM{err: boom}, rag.NewMemoryStore())
	require.NoError(t, system.Prepare(ctx, "Dataset1", []string{"metadata"}, nil))

	_, err := system.Answer(ctx, "anything")
	assert.ErrorIs(t, err, boom)
}

func TestCloseDropsCollection(t *testing.T) {
	ctx := context.Background()
	store := rag.NewMemoryStore()
	system := rag.NewSystem(&keywordEmbedder{}, &fakeLLM{}, store, rag.WithTopK(1))
	require.NoError(t, system.Prepare(ctx, "Dataset1", []string{"metadata"}, nil))

	require.NoError(t, system.Close(ctx))
	assert.False(t, system.Prepared())

	_, err := store.Search(ctx, "Dataset1", make([]float32, len(vocabulary)), 1)
	assert.ErrorIs(t, err, rag.ErrCollectionNotFound)
	require.NoError(t, system.Close(ctx))
}
