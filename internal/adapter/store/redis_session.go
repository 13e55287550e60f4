package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"maison-core/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps each session in a sorted set scored by the turn
// timestamp in microseconds.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration // 0 keeps sessions forever
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID + ":turns"
}

func (r *RedisSessionStore) AppendTurns(ctx context.Context, turns ...entity.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	members := make(map[string][]redis.Z)
	for _, t := range turns {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode turn: %w", err)
		}
		key := sessionKey(t.SessionID)
		members[key] = append(members[key], redis.Z{
			Score:  float64(t.Timestamp.UnixMicro()),
			Member: string(data),
		})
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, zs := range members {
			pipe.ZAdd(ctx, key, zs...)
			if r.ttl > 0 {
				pipe.Expire(ctx, key, r.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis append turns: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) ListTurns(ctx context.Context, sessionID string) ([]entity.Turn, error) {
	raw, err := r.client.ZRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list turns: %w", err)
	}

	turns := make([]entity.Turn, 0, len(raw))
	for _, item := range raw {
		var t entity.Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}
