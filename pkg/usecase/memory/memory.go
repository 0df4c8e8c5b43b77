// Package memory retrieves and manages per-user memory records: prior
// question/answer pairs reused to answer similar questions without a fresh
// remote query.
package memory

import (
	"time"

	"github.com/vidyalab/sahayak/pkg/repository"
	"github.com/vidyalab/sahayak/pkg/scoring"
)

// UseCase scores a user's records against an incoming question and manages
// the record lifecycle.
type UseCase struct {
	repo    repository.Repository
	weights scoring.Weights
	lexicon *scoring.Lexicon
	now     func() time.Time
}

type Option func(*UseCase)

// WithWeights overrides the similarity blend (defaults to HybridWeights)
func WithWeights(w scoring.Weights) Option {
	return func(u *UseCase) {
		u.weights = w
	}
}

// WithLexicon overrides the concept lexicon (defaults to DefaultLexicon)
func WithLexicon(lx *scoring.Lexicon) Option {
	return func(u *UseCase) {
		u.lexicon = lx
	}
}

// WithClock injects the time source. Retrieval is deterministic for a fixed
// clock, which is what tests rely on.
func WithClock(now func() time.Time) Option {
	return func(u *UseCase) {
		u.now = now
	}
}

func New(repo repository.Repository, opts ...Option) *UseCase {
	u := &UseCase{
		repo:    repo,
		weights: scoring.HybridWeights(),
		lexicon: scoring.DefaultLexicon(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}
