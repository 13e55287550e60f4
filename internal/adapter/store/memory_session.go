package store

import (
	"context"
	"sort"
	"sync"

	"maison-core/internal/domain/entity"
)

// MemorySessionStore is a process-local session store. History is lost on
// restart.
type MemorySessionStore struct {
	mu    sync.RWMutex
	turns map[string][]entity.Turn
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{turns: make(map[string][]entity.Turn)}
}

func (m *MemorySessionStore) AppendTurns(_ context.Context, turns ...entity.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range turns {
		m.turns[t.SessionID] = append(m.turns[t.SessionID], t)
	}
	return nil
}

func (m *MemorySessionStore) ListTurns(_ context.Context, sessionID string) ([]entity.Turn, error) {
	m.mu.RLock()
	out := make([]entity.Turn, len(m.turns[sessionID]))
	copy(out, m.turns[sessionID])
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
