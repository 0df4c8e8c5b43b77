// Package resolve orchestrates answer resolution. A question fans out to the
// user's memory, the RAG backend and the model's own knowledge as concurrent
// branches; after all branches settle a priority policy picks the answer, and
// answers worth keeping are written back to memory.
package resolve

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vidyalab/sahayak/pkg/adapter"
	"github.com/vidyalab/sahayak/pkg/model"
	"github.com/vidyalab/sahayak/pkg/repository"
	"github.com/vidyalab/sahayak/pkg/scoring"
	"github.com/vidyalab/sahayak/pkg/usecase/memory"
	"github.com/vidyalab/sahayak/pkg/utils/logging"
)

const (
	memoryConfidence   = 0.95
	directConfidence   = 0.7
	welcomeConfidence  = 0.8
	fallbackConfidence = 0.5

	// Answers at or below this confidence are not worth remembering
	writeBackThreshold = 0.5

	defaultTimeout = 30 * time.Second
)

// UseCase resolves questions through the priority chain memory > rag >
// direct > welcome > fallback.
type UseCase struct {
	repo    repository.Repository
	memory  *memory.UseCase
	gemini  adapter.Gemini
	rag     adapter.RAG
	lexicon *scoring.Lexicon
	now     func() time.Time
	timeout time.Duration
}

type Option func(*UseCase)

// WithTimeout bounds each remote branch (defaults to 30s)
func WithTimeout(d time.Duration) Option {
	return func(u *UseCase) {
		u.timeout = d
	}
}

// WithLexicon overrides the lexicon used for subject detection
func WithLexicon(lx *scoring.Lexicon) Option {
	return func(u *UseCase) {
		u.lexicon = lx
	}
}

// WithClock injects the time source used for write-back timestamps
func WithClock(now func() time.Time) Option {
	return func(u *UseCase) {
		u.now = now
	}
}

func New(repo repository.Repository, mem *memory.UseCase, gemini adapter.Gemini, rag adapter.RAG, opts ...Option) *UseCase {
	u := &UseCase{
		repo:    repo,
		memory:  mem,
		gemini:  gemini,
		rag:     rag,
		lexicon: scoring.DefaultLexicon(),
		now:     time.Now,
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// Input identifies the student and the question to resolve. Subject is
// optional; when empty it is detected from the question text.
type Input struct {
	UserID   string
	Question string
	Subject  model.Subject
}

func (x *Input) Validate() error {
	if x.UserID == "" {
		return goerr.New("user ID is required")
	}
	if x.Question == "" {
		return goerr.New("question is required")
	}
	return nil
}

// Resolve answers the question. Memory, RAG and direct knowledge are
// consulted concurrently and joined regardless of individual failure; the
// priority policy then picks the answer. Resolve never comes back
// empty-handed: when every source fails a greeting is synthesized. The only
// error path is an invalid input.
func (u *UseCase) Resolve(ctx context.Context, input Input) (*model.ResolvedAnswer, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	subject := input.Subject
	if subject == "" {
		subject = scoring.DetectSubject(input.Question, u.lexicon)
	}

	logger := logging.From(ctx)

	// Settle-all fan-out: each branch owns one result slot and its own
	// deadline. A failed or timed-out branch is an empty slot, never an
	// abort: the priority policy needs to see the memory result even when
	// it settles after RAG.
	var (
		memoryHit *model.MemoryRecord
		memoryErr error
		ragRes    *adapter.RAGResult
		ragErr    error
		direct    string
		directErr error
	)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		branchCtx, cancel := context.WithTimeout(ctx, u.timeout)
		defer cancel()
		memoryHit, memoryErr = u.memory.Retrieve(branchCtx, input.UserID, input.Question, subject)
	}()

	go func() {
		defer wg.Done()
		branchCtx, cancel := context.WithTimeout(ctx, u.timeout)
		defer cancel()
		ragRes, ragErr = u.rag.Query(branchCtx, input.Question, subject)
	}()

	// Numerical problems get a prompt that demands worked steps
	numerical := scoring.IsNumerical(input.Question)

	go func() {
		defer wg.Done()
		systemPrompt, err := buildAnswerPrompt(subject, numerical)
		if err != nil {
			directErr = err
			return
		}
		branchCtx, cancel := context.WithTimeout(ctx, u.timeout)
		defer cancel()
		direct, directErr = u.gemini.GenerateText(branchCtx, systemPrompt, input.Question)
	}()

	wg.Wait()

	if memoryErr != nil {
		logger.Warn("memory branch failed, treating as empty",
			"user", input.UserID, "error", memoryErr)
	}
	if ragErr != nil {
		logger.Warn("rag branch failed", "error", ragErr)
	}
	if directErr != nil {
		logger.Warn("direct branch failed", "error", directErr)
	}

	answer := u.pick(ctx, memoryHit, ragRes, ragErr, direct, directErr, subject)

	logger.Debug("question resolved",
		"user", input.UserID,
		"subject", subject,
		"provenance", answer.Provenance,
		"confidence", answer.Confidence,
	)

	// Memory-provenance answers are never re-written: that would echo the
	// record back into the store.
	if answer.Provenance != model.ProvenanceMemory && answer.Confidence > writeBackThreshold {
		u.writeBack(ctx, input.UserID, input.Question, subject, answer)
	}

	return answer, nil
}

// pick applies the priority policy over the settled branches
func (u *UseCase) pick(ctx context.Context, memoryHit *model.MemoryRecord, ragRes *adapter.RAGResult, ragErr error, direct string, directErr error, subject model.Subject) *model.ResolvedAnswer {
	if memoryHit != nil {
		return &model.ResolvedAnswer{
			Content:    memoryHit.Answer,
			Sources:    memoryHit.Sources,
			Provenance: model.ProvenanceMemory,
			Confidence: memoryConfidence,
		}
	}

	if ragErr == nil && ragRes != nil && !ragRes.NoContent &&
		ragRes.Confidence > 0 && strings.TrimSpace(ragRes.Answer) != "" {
		return &model.ResolvedAnswer{
			Content:    ragRes.Answer,
			Sources:    ragRes.Sources,
			Provenance: model.ProvenanceRAG,
			Confidence: ragRes.Confidence,
		}
	}

	if directErr == nil && strings.TrimSpace(direct) != "" {
		return &model.ResolvedAnswer{
			Content:    direct,
			Provenance: model.ProvenanceDirect,
			Confidence: directConfidence,
		}
	}

	if greeting := u.welcome(ctx, subject); greeting != "" {
		return &model.ResolvedAnswer{
			Content:    greeting,
			Provenance: model.ProvenanceWelcome,
			Confidence: welcomeConfidence,
		}
	}

	return &model.ResolvedAnswer{
		Content:    fallbackAnswer(subject),
		Provenance: model.ProvenanceFallback,
		Confidence: fallbackConfidence,
	}
}

// welcome asks for a short subject-aware greeting, returning "" on any
// failure so the caller can fall through to the static fallback.
func (u *UseCase) welcome(ctx context.Context, subject model.Subject) string {
	logger := logging.From(ctx)

	prompt, err := buildWelcomePrompt(subject)
	if err != nil {
		logger.Warn("failed to build welcome prompt", "error", err)
		return ""
	}

	branchCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	greeting, err := u.gemini.GenerateText(branchCtx, "", prompt)
	if err != nil {
		logger.Warn("welcome call failed", "error", err)
		return ""
	}

	return strings.TrimSpace(greeting)
}

func fallbackAnswer(subject model.Subject) string {
	return fmt.Sprintf("Hello! I am Sahayak, your %s study companion. I could not reach my knowledge sources just now, so please ask your question once more in a moment.", subject)
}

// writeBack appends the resolved answer as a new memory record. Failures are
// logged only: the answer has already been chosen.
func (u *UseCase) writeBack(ctx context.Context, userID, question string, subject model.Subject, answer *model.ResolvedAnswer) {
	logger := logging.From(ctx)

	rec := &model.MemoryRecord{
		ID:        model.NewMemoryID(),
		UserID:    userID,
		Question:  question,
		Answer:    answer.Content,
		Sources:   answer.Sources,
		Subject:   subject,
		CreatedAt: u.now(),
	}

	if err := rec.Validate(); err != nil {
		logger.Warn("skipping write-back of invalid record", "error", err)
		return
	}

	if err := u.repo.PutRecord(ctx, rec); err != nil {
		logger.Warn("failed to write back memory record",
			"user", userID, "id", rec.ID, "error", err)
	}
}
