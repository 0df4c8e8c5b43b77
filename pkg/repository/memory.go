package repository

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vidyalab/sahayak/pkg/model"
)

// Memory is an in-process store for tests and ephemeral runs. Records are
// copied on the way in and out so callers never alias store state.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]*model.MemoryRecord
}

// NewMemory creates an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string][]*model.MemoryRecord),
	}
}

func copyRecord(record *model.MemoryRecord) *model.MemoryRecord {
	clone := *record
	if record.LastUsedAt != nil {
		t := *record.LastUsedAt
		clone.LastUsedAt = &t
	}
	if record.Sources != nil {
		clone.Sources = make([]*model.Source, len(record.Sources))
		for i, s := range record.Sources {
			sc := *s
			clone.Sources[i] = &sc
		}
	}
	return &clone
}

func (r *Memory) PutRecord(ctx context.Context, record *model.MemoryRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.UserID] = append(r.records[record.UserID], copyRecord(record))
	return nil
}

func (r *Memory) ListRecords(ctx context.Context, userID string) ([]*model.MemoryRecord, error) {
	if userID == "" {
		return nil, goerr.New("user ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.records[userID]
	records := make([]*model.MemoryRecord, 0, len(stored))
	for _, record := range stored {
		records = append(records, copyRecord(record))
	}
	return records, nil
}

func (r *Memory) UpdateUsage(ctx context.Context, userID string, id model.MemoryID, usageCount int, lastUsedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, record := range r.records[userID] {
		if record.ID == id {
			record.UsageCount = usageCount
			t := lastUsedAt
			record.LastUsedAt = &t
			return nil
		}
	}

	return goerr.Wrap(ErrRecordNotFound, "update target missing",
		goerr.V("user", userID), goerr.V("id", id))
}

func (r *Memory) DeleteRecord(ctx context.Context, userID string, id model.MemoryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.records[userID]
	for i, record := range stored {
		if record.ID == id {
			r.records[userID] = append(stored[:i], stored[i+1:]...)
			return nil
		}
	}

	return goerr.Wrap(ErrRecordNotFound, "delete target missing",
		goerr.V("user", userID), goerr.V("id", id))
}

func (r *Memory) ClearRecords(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, userID)
	return nil
}

func (r *Memory) Close() error {
	return nil
}
