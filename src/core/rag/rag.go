// Package rag indexes the text documents that describe a dataset and answers
// questions about it with retrieval-augmented generation.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/miminchandrank/Csv-data-analyst/src/log"
)

const (
	DefaultTopK         = 4
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100

	// NotInitialized is the answer given before any document was indexed
	NotInitialized = "System not initialized"

	embedBatchSize = 8
)

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrVectorCount        = errors.New("documents and vectors differ in count")
	ErrDimensionMismatch  = errors.New("vector dimension mismatch")
	ErrNoDocuments        = errors.New("no documents to index")
)

const promptTemplate = "Use the following context to answer the question at the end. \n" +
	"        The context contains information about a CSV dataset. If you don't know the answer, \n" +
	"        just say that you don't know, don't try to make up an answer.\n\n" +
	"        Context: {context}\n\n" +
	"        Question: {question}\n" +
	"        Answer:"

// Embedder turns texts into vectors
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// LLMProvider completes a prompt
type LLMProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Answer is a generated answer together with the documents it was grounded on
type Answer struct {
	Answer          string   `json:"answer"`
	SourceDocuments []string `json:"source_documents"`
}

// ProgressFunc is told how many of total chunks have been embedded so far
type ProgressFunc func(done, total int)

type Option func(*System)

func WithTopK(k int) Option {
	return func(s *System) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithChunking sets the splitter used for documents longer than size characters
func WithChunking(size, overlap int) Option {
	return func(s *System) {
		if size > 0 {
			s.chunkSize = size
		}
		if overlap >= 0 && overlap < s.chunkSize {
			s.chunkOverlap = overlap
		}
	}
}

// System answers questions about one indexed collection at a time
type System struct {
	embedder Embedder
	llm      LLMProvider
	store    VectorStore
	prompt   prompts.PromptTemplate

	topK         int
	chunkSize    int
	chunkOverlap int

	mu         sync.RWMutex
	collection string
	prepared   bool
}

func NewSystem(embedder Embedder, llm LLMProvider, store VectorStore, opts ...Option) *System {
	s := &System{
		embedder:     embedder,
		llm:          llm,
		store:        store,
		topK:         DefaultTopK,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		prompt: prompts.PromptTemplate{
			Template:       promptTemplate,
			InputVariables: []string{"context", "question"},
			TemplateFormat: prompts.TemplateFormatFString,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prepare embeds documents into collection, replacing whatever it held.
// progress may be nil.
func (s *System) Prepare(ctx context.Context, collection string, documents []string, progress ProgressFunc) error {
	chunks, err := s.split(documents)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return ErrNoDocuments
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prepared = false

	if err := s.store.Reset(ctx, collection); err != nil {
		return fmt.Errorf("failed to reset collection %s: %w", collection, err)
	}
	s.collection = collection

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		texts := make([]string, end-start)
		for i, doc := range chunks[start:end] {
			texts[i] = doc.PageContent
		}

		vectors, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed documents: %w", err)
		}
		if err := s.store.Add(ctx, collection, chunks[start:end], vectors); err != nil {
			return fmt.Errorf("failed to index documents: %w", err)
		}
		if progress != nil {
			progress(end, len(chunks))
		}
	}

	s.prepared = true
	log.Debug("indexed dataset documents", "collection", collection, "documents", len(documents), "chunks", len(chunks))
	return nil
}

func (s *System) split(documents []string) ([]schema.Document, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
	)

	var chunks []schema.Document
	for i, doc := range documents {
		if utf8.RuneCountInString(doc) <= s.chunkSize {
			chunks = append(chunks, schema.Document{PageContent: doc, Metadata: map[string]any{"document": i}})
			continue
		}
		parts, err := splitter.SplitText(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to split document %d: %w", i, err)
		}
		for _, part := range parts {
			chunks = append(chunks, schema.Document{PageContent: part, Metadata: map[string]any{"document": i}})
		}
	}
	return chunks, nil
}

// Answer retrieves the documents nearest to question and asks the LLM.
// Before Prepare succeeds it answers NotInitialized without error.
func (s *System) Answer(ctx context.Context, question string) (*Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.prepared {
		return &Answer{Answer: NotInitialized, SourceDocuments: []string{}}, nil
	}

	vector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	docs, err := s.store.Search(ctx, s.collection, vector, s.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve documents: %w", err)
	}

	sources := make([]string, len(docs))
	for i, doc := range docs {
		sources[i] = doc.PageContent
	}

	prompt, err := s.prompt.Format(map[string]any{
		"context":  strings.Join(sources, "\n\n"),
		"question": question,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	completion, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	return &Answer{
		Answer:          strings.TrimSpace(completion),
		SourceDocuments: sources,
	}, nil
}

// Prepared reports whether a collection has been indexed
func (s *System) Prepared() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prepared
}

// Close drops the indexed collection
func (s *System) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collection == "" {
		return nil
	}
	if err := s.store.Drop(ctx, s.collection); err != nil {
		return fmt.Errorf("failed to drop collection %s: %w", s.collection, err)
	}
	s.collection = ""
	s.prepared = false
	return nil
}
