package client

import (
	"context"
	"fmt"

	"maison-core/internal/domain/entity"

	"google.golang.org/genai"
)

// Embedder turns a visitor's query into the vector used to search the menu
// and restaurant passages. The model must match the one the index was built
// with, otherwise similarity scores are meaningless.
type Embedder struct {
	client *genai.Client
	model  string // e.g., "text-embedding-004"
}

// NewEmbedderFromClient shares the process-wide genai client with the chat
// model and the dish extractor.
func NewEmbedderFromClient(c *genai.Client, model string) *Embedder {
	return &Embedder{client: c, model: model}
}

// CreateEmbedding embeds a single query. Only the first vector of the
// response is used.
func (e *Embedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	res, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed (%s): %w", e.model, err)
	}
	return firstVector(res)
}

func firstVector(res *genai.EmbedContentResponse) ([]float32, error) {
	if res == nil || len(res.Embeddings) == 0 || res.Embeddings[0] == nil || len(res.Embeddings[0].Values) == 0 {
		return nil, entity.ErrNoEmbedding
	}
	return res.Embeddings[0].Values, nil
}
