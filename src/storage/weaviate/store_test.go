package weaviate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weaviate/weaviate/entities/models"
)

func TestValidClassName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"Dataset1786543210", true},
		{"Dataset_a", true},
		{"dataset", false},
		{"1Dataset", false},
		{"Data-set", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validClassName(tt.name)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidClassName)
			}
		})
	}
}

func TestParseResultsToDocuments(t *testing.T) {
	data := map[string]models.JSONObject{
		"Get": map[string]interface{}{
			"Dataset1": []interface{}{
				map[string]interface{}{
					"content":  "Column: amount\n",
					"document": float64(2),
					"_additional": map[string]interface{}{
						"id":       "8d5a4a2e-4b4e-4a57-9d62-7d7c7f8c2b10",
						"distance": 0.25,
					},
				},
				map[string]interface{}{
					"content":     "Dataset Metadata:\n",
					"_additional": map[string]interface{}{"id": "b1", "distance": nil},
				},
				"not an object",
			},
		},
	}

	results := parseResults(data, "Dataset1")
	assert.Len(t, results, 2)
	assert.Equal(t, "8d5a4a2e-4b4e-4a57-9d62-7d7c7f8c2b10", results[0].ID)
	assert.Equal(t, 0.25, results[0].Distance)
	assert.NotContains(t, results[0].Properties, "_additional")

	docs := toDocuments(results)
	assert.Equal(t, "Column: amount\n", docs[0].PageContent)
	assert.InDelta(t, 0.25, docs[0].Score, 1e-6)
	assert.Equal(t, 2, docs[0].Metadata["document"])
	assert.Equal(t, "Dataset Metadata:\n", docs[1].PageContent)
	assert.Zero(t, docs[1].Score)
	assert.NotContains(t, docs[1].Metadata, "document")

	assert.Empty(t, parseResults(data, "Other"))
	assert.Empty(t, parseResults(map[string]models.JSONObject{}, "Dataset1"))
}
