package memory_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/vidyalab/sahayak/pkg/model"
	"github.com/vidyalab/sahayak/pkg/repository"
	"github.com/vidyalab/sahayak/pkg/usecase/memory"
)

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func putRecord(t *testing.T, repo repository.Repository, userID, question string, subject model.Subject, createdAt time.Time) *model.MemoryRecord {
	t.Helper()
	rec := &model.MemoryRecord{
		ID:        model.NewMemoryID(),
		UserID:    userID,
		Question:  question,
		Answer:    "answer to: " + question,
		Subject:   subject,
		CreatedAt: createdAt,
	}
	gt.NoError(t, repo.PutRecord(context.Background(), rec))
	return rec
}

// One-day-old "What is a derivative?" against "What is a derivative in
// calculus?" with matching subject: lexical 4/6, concept 1/2, structural 1/6,
// subject bonus 0.1, recency bonus 0.1*exp(-1/30). Total ~0.7034 clears the
// sparse-memory threshold of 0.7.
func TestRetrieveDerivativeQuestion(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := repository.NewMemory()
	stored := putRecord(t, repo, "user-1", "What is a derivative?", model.SubjectMathematics, now.Add(-24*time.Hour))

	uc := memory.New(repo, memory.WithClock(fixedClock(now)))
	ctx := context.Background()

	records, err := repo.ListRecords(ctx, "user-1")
	gt.NoError(t, err)
	candidates := uc.Rank("What is a derivative in calculus?", model.SubjectMathematics, records, now)
	gt.A(t, candidates).Length(1)

	wantCombined := 0.4*(4.0/6.0) + 0.42*0.5 + 0.18*(1.0/6.0) + 0.1
	gt.True(t, math.Abs(candidates[0].Combined-wantCombined) < 1e-9)

	wantTotal := wantCombined + 0.1*math.Exp(-1.0/30.0)
	gt.True(t, math.Abs(candidates[0].Total()-wantTotal) < 1e-9)

	threshold := memory.Threshold("What is a derivative in calculus?", candidates[0], 1)
	gt.True(t, math.Abs(threshold-0.7) < 1e-9)

	hit, err := uc.Retrieve(ctx, "user-1", "What is a derivative in calculus?", model.SubjectMathematics)
	gt.NoError(t, err)
	gt.V(t, hit).NotNil()
	gt.Equal(t, hit.ID, stored.ID)
	gt.Equal(t, hit.Answer, "answer to: What is a derivative?")
	gt.Equal(t, hit.UsageCount, 1)
	gt.V(t, hit.LastUsedAt).NotNil()

	// The usage bump is persisted
	records, err = repo.ListRecords(ctx, "user-1")
	gt.NoError(t, err)
	gt.Equal(t, records[0].UsageCount, 1)
	gt.V(t, records[0].LastUsedAt).NotNil()
}

func TestRetrieveEmptyMemory(t *testing.T) {
	uc := memory.New(repository.NewMemory())

	hit, err := uc.Retrieve(context.Background(), "user-1", "What is a derivative?", model.SubjectMathematics)
	gt.NoError(t, err)
	gt.Nil(t, hit)
}

func TestRetrieveBelowThreshold(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := repository.NewMemory()
	putRecord(t, repo, "user-1", "What is a derivative?", model.SubjectMathematics, now.Add(-24*time.Hour))

	uc := memory.New(repo, memory.WithClock(fixedClock(now)))
	ctx := context.Background()

	hit, err := uc.Retrieve(ctx, "user-1", "Explain the French Revolution", model.SubjectPhysics)
	gt.NoError(t, err)
	gt.Nil(t, hit)

	// A miss leaves usage untouched
	records, err := repo.ListRecords(ctx, "user-1")
	gt.NoError(t, err)
	gt.Equal(t, records[0].UsageCount, 0)
	gt.Nil(t, records[0].LastUsedAt)
}

func TestRetrieveValidatesInput(t *testing.T) {
	uc := memory.New(repository.NewMemory())
	ctx := context.Background()

	_, err := uc.Retrieve(ctx, "", "question", model.SubjectMathematics)
	gt.Error(t, err)

	_, err = uc.Retrieve(ctx, "user-1", "", model.SubjectMathematics)
	gt.Error(t, err)
}

func TestRankIsDeterministic(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := repository.NewMemory()
	putRecord(t, repo, "user-1", "What is a vector?", model.SubjectMathematics, now.Add(-48*time.Hour))
	putRecord(t, repo, "user-1", "What is a matrix?", model.SubjectMathematics, now.Add(-24*time.Hour))
	putRecord(t, repo, "user-1", "Explain momentum", model.SubjectPhysics, now.Add(-12*time.Hour))

	uc := memory.New(repo)
	records, err := repo.ListRecords(context.Background(), "user-1")
	gt.NoError(t, err)

	first := uc.Rank("What is a vector space?", model.SubjectMathematics, records, now)
	second := uc.Rank("What is a vector space?", model.SubjectMathematics, records, now)

	gt.Equal(t, len(first), len(second))
	for i := range first {
		gt.Equal(t, first[i].Record.ID, second[i].Record.ID)
		gt.True(t, almostEqual(first[i].Total(), second[i].Total()))
	}
}

func TestRankTiesKeepInsertionOrder(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	createdAt := now.Add(-24 * time.Hour)
	repo := repository.NewMemory()

	first := putRecord(t, repo, "user-1", "What is a derivative?", model.SubjectMathematics, createdAt)
	second := putRecord(t, repo, "user-1", "What is a derivative?", model.SubjectMathematics, createdAt)

	uc := memory.New(repo, memory.WithClock(fixedClock(now)))
	ctx := context.Background()

	records, err := repo.ListRecords(ctx, "user-1")
	gt.NoError(t, err)

	candidates := uc.Rank("What is a derivative?", model.SubjectMathematics, records, now)
	gt.A(t, candidates).Length(2)
	gt.True(t, almostEqual(candidates[0].Total(), candidates[1].Total()))
	gt.Equal(t, candidates[0].Record.ID, first.ID)
	gt.Equal(t, candidates[1].Record.ID, second.ID)
}

func TestThreshold(t *testing.T) {
	shortQ := "What is a derivative?"
	longQ := "Can you please explain to me how the derivative of a polynomial function is computed"

	testCases := []struct {
		name     string
		question string
		combined float64
		records  int
		want     float64
	}{
		{"base", shortQ, 0.5, 10, 0.6},
		{"long question", longQ, 0.5, 10, 0.5},
		{"strong top match", shortQ, 0.85, 10, 0.5},
		{"sparse memory", shortQ, 0.5, 3, 0.7},
		{"long and strong", longQ, 0.85, 10, 0.4},
		{"long and strong but sparse", longQ, 0.85, 3, 0.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			top := memory.Candidate{Combined: tc.combined}
			got := memory.Threshold(tc.question, top, tc.records)
			gt.True(t, math.Abs(got-tc.want) < 1e-9)
		})
	}
}

// Raising the top candidate's similarity can flip a rejection into an
// acceptance, never the other way around.
func TestAcceptanceMonotonicity(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := repository.NewMemory()
	putRecord(t, repo, "user-1", "how does gravity pull objects down", model.SubjectPhysics, now.Add(-24*time.Hour))

	uc := memory.New(repo)
	records, err := repo.ListRecords(context.Background(), "user-1")
	gt.NoError(t, err)

	// Same token count, increasing overlap with the stored question
	variants := []string{
		"why is the sky blue at noon",
		"how does friction slow objects down",
		"how does gravity pull objects down",
	}

	accepted := make([]bool, len(variants))
	totals := make([]float64, len(variants))
	for i, q := range variants {
		candidates := uc.Rank(q, model.SubjectPhysics, records, now)
		threshold := memory.Threshold(q, candidates[0], len(records))
		accepted[i] = candidates[0].Total() > threshold
		totals[i] = candidates[0].Total()
	}

	for i := 1; i < len(variants); i++ {
		gt.True(t, totals[i] >= totals[i-1])
		if accepted[i-1] {
			gt.True(t, accepted[i])
		}
	}
	gt.False(t, accepted[0])
	gt.True(t, accepted[len(variants)-1])
}

type failingUsageRepo struct {
	repository.Repository
}

func (r *failingUsageRepo) UpdateUsage(ctx context.Context, userID string, id model.MemoryID, usageCount int, lastUsedAt time.Time) error {
	return goerr.New("store is down")
}

func TestRetrieveHitSurvivesUsagePersistFailure(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	inner := repository.NewMemory()
	putRecord(t, inner, "user-1", "What is a derivative?", model.SubjectMathematics, now.Add(-24*time.Hour))

	uc := memory.New(&failingUsageRepo{Repository: inner}, memory.WithClock(fixedClock(now)))

	hit, err := uc.Retrieve(context.Background(), "user-1", "What is a derivative in calculus?", model.SubjectMathematics)
	gt.NoError(t, err)
	gt.V(t, hit).NotNil()
	gt.Equal(t, hit.UsageCount, 1)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
