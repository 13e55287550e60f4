package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"maison-core/internal/domain/entity"

	chromem "github.com/philippgille/chromem-go"
)

// ChromemIndex is the in-process alternative to Qdrant. Documents must be
// stored with their embeddings; queries are always made by vector.
type ChromemIndex struct {
	mu         sync.RWMutex
	collection *chromem.Collection
}

var errNoEmbeddingFunc = errors.New("chromem index: documents must carry precomputed embeddings")

// noEmbedding keeps chromem from falling back to its default remote embedder.
func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoEmbeddingFunc
}

// OpenChromemIndex opens (or creates) the persistent database at path.
func OpenChromemIndex(path, collectionName string) (*ChromemIndex, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open chromem db: %w", err)
	}
	col, err := db.GetOrCreateCollection(collectionName, nil, noEmbedding)
	if err != nil {
		return nil, fmt.Errorf("open chromem collection: %w", err)
	}
	return NewChromemIndex(col), nil
}

func NewChromemIndex(col *chromem.Collection) *ChromemIndex {
	return &ChromemIndex{collection: col}
}

func (c *ChromemIndex) Search(ctx context.Context, vector []float32, limit int) ([]entity.Passage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := c.collection.Count()
	if count == 0 || limit <= 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := c.collection.QueryEmbedding(ctx, vector, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	passages := make([]entity.Passage, 0, len(results))
	for _, r := range results {
		if r.Content == "" {
			continue
		}
		passages = append(passages, entity.Passage{Text: r.Content, Score: r.Similarity})
	}
	return passages, nil
}
