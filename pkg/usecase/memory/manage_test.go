package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/vidyalab/sahayak/pkg/model"
	"github.com/vidyalab/sahayak/pkg/repository"
	"github.com/vidyalab/sahayak/pkg/usecase/memory"
)

func TestListRecords(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := repository.NewMemory()
	first := putRecord(t, repo, "user-1", "What is a vector?", model.SubjectMathematics, now.Add(-2*time.Hour))
	second := putRecord(t, repo, "user-1", "What is momentum?", model.SubjectPhysics, now.Add(-time.Hour))
	putRecord(t, repo, "user-2", "What is an acid?", model.SubjectChemistry, now)

	uc := memory.New(repo)

	records, err := uc.List(context.Background(), "user-1")
	gt.NoError(t, err)
	gt.A(t, records).Length(2)
	gt.Equal(t, records[0].ID, first.ID)
	gt.Equal(t, records[1].ID, second.ID)

	_, err = uc.List(context.Background(), "")
	gt.Error(t, err)
}

func TestForgetRecord(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := repository.NewMemory()
	first := putRecord(t, repo, "user-1", "What is a vector?", model.SubjectMathematics, now.Add(-time.Hour))
	second := putRecord(t, repo, "user-1", "What is momentum?", model.SubjectPhysics, now)

	uc := memory.New(repo)
	ctx := context.Background()

	gt.NoError(t, uc.Forget(ctx, "user-1", first.ID))

	records, err := uc.List(ctx, "user-1")
	gt.NoError(t, err)
	gt.A(t, records).Length(1)
	gt.Equal(t, records[0].ID, second.ID)

	err = uc.Forget(ctx, "user-1", first.ID)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, repository.ErrRecordNotFound))

	gt.Error(t, uc.Forget(ctx, "", first.ID))
	gt.Error(t, uc.Forget(ctx, "user-1", ""))
}

func TestClearRecords(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := repository.NewMemory()
	putRecord(t, repo, "user-1", "What is a vector?", model.SubjectMathematics, now.Add(-time.Hour))
	putRecord(t, repo, "user-1", "What is momentum?", model.SubjectPhysics, now)
	kept := putRecord(t, repo, "user-2", "What is an acid?", model.SubjectChemistry, now)

	uc := memory.New(repo)
	ctx := context.Background()

	gt.NoError(t, uc.Clear(ctx, "user-1"))

	records, err := uc.List(ctx, "user-1")
	gt.NoError(t, err)
	gt.A(t, records).Length(0)

	// Other users are untouched
	records, err = uc.List(ctx, "user-2")
	gt.NoError(t, err)
	gt.A(t, records).Length(1)
	gt.Equal(t, records[0].ID, kept.ID)

	gt.Error(t, uc.Clear(ctx, ""))
}
