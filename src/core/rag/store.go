package rag

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tmc/langchaingo/schema"
)

// VectorStore keeps embedded documents in named collections
type VectorStore interface {
	// Reset creates the collection, emptying it when it already exists
	Reset(ctx context.Context, collection string) error
	// Add stores documents with their vectors; docs and vectors are parallel
	Add(ctx context.Context, collection string, docs []schema.Document, vectors [][]float32) error
	// Search returns the k documents closest to vector, nearest first
	Search(ctx context.Context, collection string, vector []float32, k int) ([]schema.Document, error)
	// Drop removes the collection; dropping a missing collection is not an error
	Drop(ctx context.Context, collection string) error
}

type entry struct {
	doc    schema.Document
	vector []float32
}

// MemoryStore is an exact nearest neighbour index using squared euclidean
// distance. Scores on returned documents are the distances.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]entry)}
}

func (m *MemoryStore) Reset(_ context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = nil
	return nil
}

func (m *MemoryStore) Add(_ context.Context, collection string, docs []schema.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("%w: %d documents, %d vectors", ErrVectorCount, len(docs), len(vectors))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	entries, ok := m.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	for i := range docs {
		if len(entries) > 0 && len(entries[0].vector) != len(vectors[i]) {
			return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, len(entries[0].vector), len(vectors[i]))
		}
		entries = append(entries, entry{doc: docs[i], vector: vectors[i]})
	}
	m.collections[collection] = entries
	return nil
}

func (m *MemoryStore) Search(_ context.Context, collection string, vector []float32, k int) ([]schema.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	type hit struct {
		idx  int
		dist float32
	}
	hits := make([]hit, 0, len(entries))
	for i, e := range entries {
		if len(e.vector) != len(vector) {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, len(e.vector), len(vector))
		}
		hits = append(hits, hit{idx: i, dist: squaredL2(e.vector, vector)})
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].dist < hits[b].dist })

	if k > len(hits) {
		k = len(hits)
	}
	out := make([]schema.Document, k)
	for i := 0; i < k; i++ {
		doc := entries[hits[i].idx].doc
		doc.Score = hits[i].dist
		out[i] = doc
	}
	return out, nil
}

func (m *MemoryStore) Drop(_ context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, collection)
	return nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
