package store

import (
	"context"
	"sync"

	"github.com/matzehuels/reveal/pkg/graph"
)

// MemoryStore keeps snapshots in memory. Stored snapshots are copied so
// callers cannot mutate them.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]Snapshot)}
}

func (m *MemoryStore) Save(ctx context.Context, s *Snapshot) error {
	if err := prepare(s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[s.ID] = clone(s)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	key, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snaps[key]
	if !ok {
		return nil, notFound(key)
	}
	out := clone(&s)
	return &out, nil
}

func (m *MemoryStore) List(ctx context.Context, docHash string) ([]*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Snapshot
	for _, s := range m.snaps {
		if docHash == "" || s.DocumentHash == docHash {
			c := clone(&s)
			out = append(out, &c)
		}
	}
	newestFirst(out)
	return out, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	key, err := ParseID(id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, key)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func clone(s *Snapshot) Snapshot {
	c := *s
	c.Layout.Positions = append([]graph.Position(nil), s.Layout.Positions...)
	return c
}

var _ Store = (*MemoryStore)(nil)
