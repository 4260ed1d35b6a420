package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"financas/internal/core"
)

// MemoryStore is an in-process slot for tests and ephemeral runs. The
// document round-trips through JSON on both paths so it behaves exactly
// like the durable backends, aliasing included.
type MemoryStore struct {
	mu  sync.Mutex
	raw []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (*core.AppState, error) {
	m.mu.Lock()
	raw := m.raw
	m.mu.Unlock()

	if raw == nil {
		return Seed(), nil
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Seed(), nil
	}
	return Materialize(ctx, doc), nil
}

func (m *MemoryStore) Save(ctx context.Context, s *core.AppState) error {
	raw, err := json.Marshal(Snapshot(s))
	if err != nil {
		return fmt.Errorf("encode state document: %w", err)
	}
	m.mu.Lock()
	m.raw = raw
	m.mu.Unlock()
	return nil
}
