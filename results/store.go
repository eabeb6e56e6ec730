package results

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned when a log entry does not exist.
var ErrNotFound = errors.New("results: entry not found")

// Store persists encoded log entries. Entries are immutable once written;
// stores never overwrite an existing key.
type Store interface {
	// Append writes a new entry under the given key. Writing an existing key
	// is an error: the log is append-only.
	Append(ctx context.Context, key string, data []byte) error

	// Read returns the entry stored under key, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)

	// Keys lists all entry keys, sorted.
	Keys(ctx context.Context) ([]string, error)
}

// ErrDuplicateKey is returned when an append would overwrite an entry.
var ErrDuplicateKey = errors.New("results: key already exists")

// MemoryStore is an in-memory Store for tests and ephemeral runs.
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Append implements Store.
func (m *MemoryStore) Append(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, dup := m.entries[key]; dup {
		return ErrDuplicateKey
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	m.entries[key] = copied
	return nil
}

// Read implements Store.
func (m *MemoryStore) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

// Keys implements Store.
func (m *MemoryStore) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.entries))
	for k := range m.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
