package repository

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vidyalab/sahayak/pkg/model"
)

var (
	ErrRecordNotFound = goerr.New("memory record not found")
)

// Repository is the durable per-user memory store. Records are append-only:
// the question/answer payload never changes after PutRecord, only the usage
// fields move through UpdateUsage.
type Repository interface {
	// PutRecord appends a new memory record for record.UserID
	PutRecord(ctx context.Context, record *model.MemoryRecord) error

	// ListRecords returns all records of a user in insertion order
	// (CreatedAt ascending)
	ListRecords(ctx context.Context, userID string) ([]*model.MemoryRecord, error)

	// UpdateUsage persists new usage stats for an existing record
	UpdateUsage(ctx context.Context, userID string, id model.MemoryID, usageCount int, lastUsedAt time.Time) error

	// DeleteRecord removes a single record
	DeleteRecord(ctx context.Context, userID string, id model.MemoryID) error

	// ClearRecords removes all records of a user
	ClearRecords(ctx context.Context, userID string) error

	// Close releases underlying resources
	Close() error
}
