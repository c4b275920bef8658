package ollama

import (
	"context"
	"fmt"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
)

// Embedder embeds texts with one Ollama embedding model
type Embedder struct {
	client *Client
	model  string
}

func NewEmbedder(client *Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.client.GetEmbedding(ctx, e.model, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.client.GetEmbedding(ctx, e.model, text)
}

// LLM completes prompts with one Ollama model
type LLM struct {
	client  *Client
	model   string
	options map[string]interface{}
}

func NewLLM(client *Client, model string, temperature float64, maxTokens int) *LLM {
	return &LLM{
		client: client,
		model:  model,
		options: map[string]interface{}{
			"temperature": temperature,
			"num_predict": maxTokens,
		},
	}
}

func (l *LLM) Generate(ctx context.Context, prompt string) (string, error) {
	return l.client.Generate(ctx, l.model, "", prompt, l.options)
}
