package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type MemoryID string

// NewMemoryID generates a new unique MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

// MemoryRecord is one answered question kept for a single user. Question,
// Answer, Sources and Subject are write-once; only UsageCount and LastUsedAt
// change after creation.
type MemoryRecord struct {
	ID       MemoryID
	UserID   string
	Question string
	Answer   string
	Sources  []*Source
	Subject  Subject

	CreatedAt  time.Time
	UsageCount int
	LastUsedAt *time.Time
}

// Validate checks if the record is complete enough to store
func (m *MemoryRecord) Validate() error {
	if m.ID == "" {
		return goerr.New("memory record id is empty")
	}
	if m.UserID == "" {
		return goerr.New("memory record user id is empty")
	}
	if m.Question == "" {
		return goerr.New("memory record question is empty")
	}
	if m.Answer == "" {
		return goerr.New("memory record answer is empty")
	}
	if m.UsageCount < 0 {
		return goerr.New("memory record usage count is negative", goerr.V("count", m.UsageCount))
	}
	return nil
}

// Source points at a content chunk that backed an answer
type Source struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Subject    string  `json:"subject"`
	Chapter    string  `json:"chapter"`
	Similarity float64 `json:"similarity"`
}
