package repository

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/m-mizutani/goerr/v2"

	"github.com/vidyalab/sahayak/pkg/model"
)

// Cached wraps a Repository with a per-user read-through cache so repeated
// retrievals in one session do not refetch the whole record list. Any write
// for a user drops that user's cache entry.
type Cached struct {
	inner Repository
	cache *lru.Cache[string, []*model.MemoryRecord]
}

// NewCached wraps inner with an LRU over up to size users
func NewCached(inner Repository, size int) (*Cached, error) {
	cache, err := lru.New[string, []*model.MemoryRecord](size)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create record cache", goerr.V("size", size))
	}
	return &Cached{inner: inner, cache: cache}, nil
}

func (r *Cached) PutRecord(ctx context.Context, record *model.MemoryRecord) error {
	if err := r.inner.PutRecord(ctx, record); err != nil {
		return err
	}
	r.cache.Remove(record.UserID)
	return nil
}

func (r *Cached) ListRecords(ctx context.Context, userID string) ([]*model.MemoryRecord, error) {
	// Records are copied on the way in and out so caller mutations of a
	// listed record never leak into the cached snapshot.
	if records, ok := r.cache.Get(userID); ok {
		return copyRecords(records), nil
	}

	records, err := r.inner.ListRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.cache.Add(userID, copyRecords(records))
	return records, nil
}

func copyRecords(records []*model.MemoryRecord) []*model.MemoryRecord {
	copied := make([]*model.MemoryRecord, len(records))
	for i, rec := range records {
		copied[i] = copyRecord(rec)
	}
	return copied
}

func (r *Cached) UpdateUsage(ctx context.Context, userID string, id model.MemoryID, usageCount int, lastUsedAt time.Time) error {
	if err := r.inner.UpdateUsage(ctx, userID, id, usageCount, lastUsedAt); err != nil {
		return err
	}
	r.cache.Remove(userID)
	return nil
}

func (r *Cached) DeleteRecord(ctx context.Context, userID string, id model.MemoryID) error {
	if err := r.inner.DeleteRecord(ctx, userID, id); err != nil {
		return err
	}
	r.cache.Remove(userID)
	return nil
}

func (r *Cached) ClearRecords(ctx context.Context, userID string) error {
	if err := r.inner.ClearRecords(ctx, userID); err != nil {
		return err
	}
	r.cache.Remove(userID)
	return nil
}

func (r *Cached) Close() error {
	r.cache.Purge()
	return r.inner.Close()
}
