package repository

import (
	"context"
	"time"

	"maison-core/internal/domain/entity"
)

// SessionStore is the append-only turn log, partitioned by session id.
type SessionStore interface {
	// AppendTurns writes all turns or none of them.
	AppendTurns(ctx context.Context, turns ...entity.Turn) error
	// ListTurns returns the turns of a session oldest first.
	ListTurns(ctx context.Context, sessionID string) ([]entity.Turn, error)
}

type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type VectorIndex interface {
	Search(ctx context.Context, vector []float32, limit int) ([]entity.Passage, error)
}

type LanguageModel interface {
	Complete(ctx context.Context, req entity.ModelRequest) (string, error)
}

// EntityExtractor returns the raw extraction output for a generated reply.
type EntityExtractor interface {
	Extract(ctx context.Context, reply string) (string, error)
}

type ImageSearcher interface {
	SearchImages(ctx context.Context, query string) ([]string, error)
}

type ImageCache interface {
	Get(ctx context.Context, name string) ([]string, bool, error)
	Set(ctx context.Context, name string, urls []string, ttl time.Duration) error
}
