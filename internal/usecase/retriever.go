package usecase

import (
	"context"
	"time"

	"maison-core/internal/domain/repository"

	"go.uber.org/zap"
)

const DefaultTopK = 3

// ContextRetriever embeds a query and looks it up in the vector index. It
// never fails: any error degrades to an empty context.
type ContextRetriever struct {
	embedder      repository.Embedder
	index         repository.VectorIndex
	defaultTopK   int
	embedTimeout  time.Duration
	searchTimeout time.Duration
	logger        *zap.Logger
}

func NewContextRetriever(emb repository.Embedder, idx repository.VectorIndex, defaultTopK int, embedTimeout, searchTimeout time.Duration, logger *zap.Logger) *ContextRetriever {
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	return &ContextRetriever{
		embedder:      emb,
		index:         idx,
		defaultTopK:   defaultTopK,
		embedTimeout:  embedTimeout,
		searchTimeout: searchTimeout,
		logger:        logger,
	}
}

// Retrieve returns the text of the topK closest passages, best match first.
func (r *ContextRetriever) Retrieve(ctx context.Context, query string, topK int) (passages []string) {
	if topK <= 0 {
		topK = r.defaultTopK
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("[RETRIEVER] panic during retrieval", zap.Any("panic", rec))
			passages = []string{}
		}
	}()

	embedCtx, cancel := withTimeout(ctx, r.embedTimeout)
	vector, err := r.embedder.CreateEmbedding(embedCtx, query)
	cancel()
	if err != nil {
		r.logger.Warn("[RETRIEVER] embedding failed, continuing without context", zap.Error(err))
		return []string{}
	}

	searchCtx, cancel := withTimeout(ctx, r.searchTimeout)
	hits, err := r.index.Search(searchCtx, vector, topK)
	cancel()
	if err != nil {
		r.logger.Warn("[RETRIEVER] vector search failed, continuing without context", zap.Error(err))
		return []string{}
	}

	passages = make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Text == "" {
			continue
		}
		passages = append(passages, h.Text)
		if len(passages) == topK {
			break
		}
	}
	return passages
}

// withTimeout leaves ctx untouched when d is zero.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
