package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/vidyalab/sahayak/pkg/model"
	"github.com/vidyalab/sahayak/pkg/repository"
)

func newTestRecord(userID, question string, createdAt time.Time) *model.MemoryRecord {
	return &model.MemoryRecord{
		ID:       model.NewMemoryID(),
		UserID:   userID,
		Question: question,
		Answer:   "answer to: " + question,
		Sources: []*model.Source{
			{ID: "src-1", Type: "textbook", Subject: "mathematics", Chapter: "5", Similarity: 0.82},
		},
		Subject:   model.SubjectMathematics,
		CreatedAt: createdAt,
	}
}

// runRepositoryTests exercises the Repository contract against any
// implementation.
func runRepositoryTests(t *testing.T, newRepo func(t *testing.T) repository.Repository) {
	t.Run("PutAndList", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now()

		questions := []string{"What is a derivative?", "Explain momentum", "What is an acid?"}
		for i, q := range questions {
			rec := newTestRecord("user-1", q, now.Add(time.Duration(i)*time.Second))
			gt.NoError(t, repo.PutRecord(ctx, rec))
		}

		records, err := repo.ListRecords(ctx, "user-1")
		gt.NoError(t, err)
		gt.A(t, records).Length(3)

		// Insertion order is preserved
		for i, q := range questions {
			gt.Equal(t, records[i].Question, q)
		}
		gt.A(t, records[0].Sources).Length(1)
		gt.Equal(t, records[0].Sources[0].Type, "textbook")
	})

	t.Run("ListEmpty", func(t *testing.T) {
		repo := newRepo(t)
		records, err := repo.ListRecords(context.Background(), "nobody")
		gt.NoError(t, err)
		gt.A(t, records).Length(0)
	})

	t.Run("UpdateUsage", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		rec := newTestRecord("user-2", "What is a vector?", time.Now())
		gt.NoError(t, repo.PutRecord(ctx, rec))

		used := time.Now().Add(time.Minute)
		gt.NoError(t, repo.UpdateUsage(ctx, "user-2", rec.ID, 1, used))

		records, err := repo.ListRecords(ctx, "user-2")
		gt.NoError(t, err)
		gt.A(t, records).Length(1)
		gt.Equal(t, records[0].UsageCount, 1)
		gt.V(t, records[0].LastUsedAt).NotNil()

		// Payload fields stay untouched
		gt.Equal(t, records[0].Question, rec.Question)
		gt.Equal(t, records[0].Answer, rec.Answer)
	})

	t.Run("UpdateUsageNotFound", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.UpdateUsage(context.Background(), "user-2", model.NewMemoryID(), 1, time.Now())
		gt.Error(t, err)
		gt.True(t, errors.Is(err, repository.ErrRecordNotFound))
	})

	t.Run("DeleteRecord", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now()

		keep := newTestRecord("user-3", "keep me", now)
		drop := newTestRecord("user-3", "drop me", now.Add(time.Second))
		gt.NoError(t, repo.PutRecord(ctx, keep))
		gt.NoError(t, repo.PutRecord(ctx, drop))

		gt.NoError(t, repo.DeleteRecord(ctx, "user-3", drop.ID))

		records, err := repo.ListRecords(ctx, "user-3")
		gt.NoError(t, err)
		gt.A(t, records).Length(1)
		gt.Equal(t, records[0].ID, keep.ID)
	})

	t.Run("DeleteRecordNotFound", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.DeleteRecord(context.Background(), "user-3", model.NewMemoryID())
		gt.Error(t, err)
		gt.True(t, errors.Is(err, repository.ErrRecordNotFound))
	})

	t.Run("ClearRecords", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now()

		gt.NoError(t, repo.PutRecord(ctx, newTestRecord("user-4", "one", now)))
		gt.NoError(t, repo.PutRecord(ctx, newTestRecord("user-4", "two", now.Add(time.Second))))

		gt.NoError(t, repo.ClearRecords(ctx, "user-4"))

		records, err := repo.ListRecords(ctx, "user-4")
		gt.NoError(t, err)
		gt.A(t, records).Length(0)

		// Clearing an already-empty user is fine
		gt.NoError(t, repo.ClearRecords(ctx, "user-4"))
	})

	t.Run("RejectInvalidRecord", func(t *testing.T) {
		repo := newRepo(t)
		rec := newTestRecord("user-5", "incomplete", time.Now())
		rec.Answer = ""
		gt.Error(t, repo.PutRecord(context.Background(), rec))
	})

	t.Run("UserIsolation", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.PutRecord(ctx, newTestRecord("alice", "alice question", time.Now())))

		records, err := repo.ListRecords(ctx, "bob")
		gt.NoError(t, err)
		gt.A(t, records).Length(0)
	})
}
