package store

import (
	"context"
	"sync"
	"time"

	"github.com/kode4food/intake/pkg/api"
)

// MemoryStore is an in-process DraftStore used by tests and embedded
// deployments that run without Redis
type MemoryStore struct {
	mu      sync.RWMutex
	records map[api.DraftID]*api.DraftRecord
}

var _ DraftStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory draft store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: map[api.DraftID]*api.DraftRecord{},
	}
}

// Save stores a draft, minting an ID and creation time when absent
func (s *MemoryStore) Save(
	_ context.Context, rec *api.DraftRecord,
) (api.DraftID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if rec.ID == "" {
		rec.ID = api.NewDraftID()
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	clone := *rec
	clone.Snapshot = rec.Snapshot.Clone()
	clone.Guards = rec.Guards.Clone()
	s.records[rec.ID] = &clone
	return rec.ID, nil
}

// Load retrieves a draft by ID
func (s *MemoryStore) Load(
	_ context.Context, id api.DraftID,
) (*api.DraftRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrDraftNotFound
	}

	clone := *rec
	clone.Snapshot = rec.Snapshot.Clone()
	clone.Guards = rec.Guards.Clone()
	return &clone, nil
}

// Delete removes a draft. Deleting a missing draft is not an error
func (s *MemoryStore) Delete(_ context.Context, id api.DraftID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// List returns all stored drafts
func (s *MemoryStore) List(_ context.Context) ([]*api.DraftRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*api.DraftRecord, 0, len(s.records))
	for _, rec := range s.records {
		clone := *rec
		clone.Snapshot = rec.Snapshot.Clone()
		clone.Guards = rec.Guards.Clone()
		res = append(res, &clone)
	}
	return res, nil
}
