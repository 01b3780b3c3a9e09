package record

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRow struct {
	kind      string
	version   int64
	updatedAt time.Time
	attrs     map[string]string
}

// MemoryStore keeps records in process memory. It applies the same optimistic
// versioning as the database stores and is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*memoryRow
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[uuid.UUID]*memoryRow)}
}

// Create inserts a new record at version 1 and binds it to the store.
func (s *MemoryStore) Create(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[r.ID]; ok {
		return ErrExists
	}

	now := time.Now().UTC()
	s.rows[r.ID] = &memoryRow{
		kind:      r.Kind,
		version:   1,
		updatedAt: now,
		attrs:     r.Attributes(),
	}

	r.UpdatedAt = now
	r.MarkSaved(1)
	r.Bind(s)
	return nil
}

// Get loads a record bound to the store.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return Restore(id, row.kind, row.version, row.updatedAt, row.attrs, s), nil
}

// Save writes the record's pending changes if its version is current.
func (s *MemoryStore) Save(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[r.ID]
	if !ok {
		return ErrNotFound
	}
	if row.version != r.Version {
		return ErrConflict
	}

	maps.Copy(row.attrs, r.Changes())
	row.version++
	row.updatedAt = time.Now().UTC()
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
