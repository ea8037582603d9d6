package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/okian/peereval/internal/domain/model"
)

// MemoryStore keeps the roster and history in process.
// It backs local runs and tests where no spreadsheet is available.
type MemoryStore struct {
	mu      sync.RWMutex
	members []model.Member
	records []model.Record
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore seeds a store with members and optional history.
func NewMemoryStore(members []model.Member, records ...model.Record) *MemoryStore {
	return &MemoryStore{
		members: slices.Clone(members),
		records: slices.Clone(records),
		now:     time.Now,
	}
}

// Load returns a copy of the current contents.
func (s *MemoryStore) Load(ctx context.Context) (model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Snapshot{
		Members:  slices.Clone(s.members),
		Records:  slices.Clone(s.records),
		LoadedAt: s.now(),
	}, nil
}

// Append adds r to the history.
func (s *MemoryStore) Append(ctx context.Context, r model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return nil
}

// Len reports how many records are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
