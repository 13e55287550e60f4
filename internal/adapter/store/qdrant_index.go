package store

import (
	"context"
	"fmt"

	"maison-core/internal/domain/entity"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// QdrantIndex searches a pre-built Qdrant collection whose points carry the
// passage in a "text" payload field.
type QdrantIndex struct {
	client         *qdrant.Client
	collectionName string
	logger         *zap.Logger
}

func NewQdrantIndex(client *qdrant.Client, collectionName string, logger *zap.Logger) *QdrantIndex {
	return &QdrantIndex{
		client:         client,
		collectionName: collectionName,
		logger:         logger,
	}
}

// EnsureCollection checks the collection is reachable. Building the index is
// someone else's job, so a missing collection is reported and tolerated.
func (s *QdrantIndex) EnsureCollection(ctx context.Context) error {
	info, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err != nil {
		st, ok := status.FromError(err)
		if ok && st.Code() == codes.NotFound {
			s.logger.Warn("[QDRANT] collection not found, retrieval will return no context",
				zap.String("collection", s.collectionName))
			return nil
		}
		return fmt.Errorf("qdrant collection info: %w", err)
	}
	s.logger.Info("[QDRANT] collection ready",
		zap.String("collection", s.collectionName),
		zap.Uint64("points", info.GetPointsCount()))
	return nil
}

func (s *QdrantIndex) Search(ctx context.Context, vector []float32, limit int) ([]entity.Passage, error) {
	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}
	return passagesFromPoints(res), nil
}

// passagesFromPoints keeps the "text" payload of each hit in rank order.
// Points without text carry nothing to ground an answer on and are skipped.
func passagesFromPoints(points []*qdrant.ScoredPoint) []entity.Passage {
	passages := make([]entity.Passage, 0, len(points))
	for _, hit := range points {
		text := hit.GetPayload()["text"].GetStringValue()
		if text == "" {
			continue
		}
		passages = append(passages, entity.Passage{Text: text, Score: hit.GetScore()})
	}
	return passages
}
