package storage

import (
	"fmt"
	"sync"
)

// MemoryStore keeps the latest snapshot per dataset in memory. It is safe
// for concurrent use; data is lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	latest map[string]Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{latest: make(map[string]Snapshot)}
}

// Put validates and stores s as the latest snapshot of its dataset.
func (m *MemoryStore) Put(s Snapshot) error {
	if s.Dataset == "" {
		return fmt.Errorf("storage: snapshot has no dataset")
	}
	if len(s.Values) != s.Horizon {
		return fmt.Errorf("storage: snapshot has %d rows for horizon %d", len(s.Values), s.Horizon)
	}
	for i, row := range s.Values {
		if len(row) != len(s.Names) {
			return fmt.Errorf("storage: row %d has %d values for %d series", i, len(row), len(s.Names))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest[s.Dataset] = copySnapshot(s)
	return nil
}

// GetLatest returns the latest snapshot of dataset, reporting whether one
// exists.
func (m *MemoryStore) GetLatest(dataset string) (Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.latest[dataset]
	if !ok {
		return Snapshot{}, false, nil
	}
	return copySnapshot(s), true, nil
}

// copySnapshot deep-copies the slices so callers cannot alias stored state.
func copySnapshot(s Snapshot) Snapshot {
	out := s
	out.Names = append([]string(nil), s.Names...)
	out.Values = make([][]float64, len(s.Values))
	for i, row := range s.Values {
		out.Values[i] = append([]float64(nil), row...)
	}
	return out
}
