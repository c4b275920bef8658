package weaviate

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/tmc/langchaingo/schema"
	"github.com/weaviate/weaviate/entities/models"
)

const (
	propContent  = "content"
	propDocument = "document"

	// l2-squared matches the in-memory index
	distanceMetric = "l2-squared"
)

var (
	ErrInvalidClassName = errors.New("invalid weaviate class name")

	classNamePattern = regexp.MustCompile(`^[A-Z][_0-9A-Za-z]*$`)
)

// Store keeps each collection in its own Weaviate class
type Store struct {
	sdk *SDK
}

func NewStore(sdk *SDK) *Store {
	return &Store{sdk: sdk}
}

func validClassName(collection string) error {
	if !classNamePattern.MatchString(collection) {
		return fmt.Errorf("%w: %q", ErrInvalidClassName, collection)
	}
	return nil
}

func (s *Store) Reset(ctx context.Context, collection string) error {
	if err := validClassName(collection); err != nil {
		return err
	}
	if err := s.Drop(ctx, collection); err != nil {
		return err
	}

	properties := []*models.Property{
		{Name: propContent, DataType: []string{"text"}},
		{Name: propDocument, DataType: []string{"int"}},
	}
	return s.sdk.CreateSchema(ctx, collection, properties, distanceMetric)
}

func (s *Store) Add(ctx context.Context, collection string, docs []schema.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("documents and vectors differ in count: %d, %d", len(docs), len(vectors))
	}
	if len(docs) == 0 {
		return nil
	}

	objects := make([]VectorObject, len(docs))
	for i, doc := range docs {
		props := map[string]interface{}{propContent: doc.PageContent}
		if n, ok := doc.Metadata[propDocument]; ok {
			props[propDocument] = n
		}
		objects[i] = VectorObject{Vector: vectors[i], Properties: props}
	}
	return s.sdk.BatchAddVectors(ctx, collection, objects)
}

func (s *Store) Search(ctx context.Context, collection string, vector []float32, k int) ([]schema.Document, error) {
	results, err := s.sdk.QueryVectors(ctx, collection, vector, QueryConfig{
		Fields: []string{propContent, propDocument},
		Limit:  k,
	})
	if err != nil {
		return nil, err
	}
	return toDocuments(results), nil
}

func toDocuments(results []QueryResult) []schema.Document {
	docs := make([]schema.Document, 0, len(results))
	for _, r := range results {
		content, _ := r.Properties[propContent].(string)
		doc := schema.Document{
			PageContent: content,
			Score:       float32(r.Distance),
			Metadata:    map[string]any{"id": r.ID},
		}
		// numbers come back from GraphQL as float64
		if n, ok := r.Properties[propDocument].(float64); ok {
			doc.Metadata[propDocument] = int(n)
		}
		docs = append(docs, doc)
	}
	return docs
}

func (s *Store) Drop(ctx context.Context, collection string) error {
	exists, err := s.sdk.ClassExists(ctx, collection)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return s.sdk.DeleteSchema(ctx, collection)
}

// Ping checks the server for health reporting
func (s *Store) Ping(ctx context.Context) error {
	return s.sdk.Live(ctx)
}
