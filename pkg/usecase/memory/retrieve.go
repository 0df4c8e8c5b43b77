package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vidyalab/sahayak/pkg/model"
	"github.com/vidyalab/sahayak/pkg/scoring"
	"github.com/vidyalab/sahayak/pkg/utils/logging"
)

const (
	subjectBonus  = 0.1
	recencyWeight = 0.1

	baseThreshold  = 0.6
	thresholdFloor = 0.4

	// Questions longer than this reuse memory more aggressively
	longQuestionTokens = 10

	// Combined score above which the bar drops further
	strongMatch = 0.8

	// Below this many records the bar rises instead
	sparseMemory = 5
)

// Candidate is one scored record. Combined carries the similarity plus the
// subject bonus; RecencyBonus is the weighted freshness term kept separate
// because the threshold inspects Combined alone.
type Candidate struct {
	Record       *model.MemoryRecord
	Combined     float64
	RecencyBonus float64
}

// Total is the ranking score
func (c Candidate) Total() float64 {
	return c.Combined + c.RecencyBonus
}

// Rank scores records against the question and orders them best-first. Pure:
// same inputs and clock always produce the same order. Ties keep insertion
// order.
func (u *UseCase) Rank(question string, subject model.Subject, records []*model.MemoryRecord, now time.Time) []Candidate {
	candidates := make([]Candidate, 0, len(records))
	for _, rec := range records {
		combined := u.weights.Similarity(question, rec.Question, u.lexicon)
		if rec.Subject.Matches(subject) {
			combined += subjectBonus
		}
		candidates = append(candidates, Candidate{
			Record:       rec,
			Combined:     combined,
			RecencyBonus: scoring.Recency(rec.CreatedAt, now) * recencyWeight,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Total() > candidates[j].Total()
	})

	return candidates
}

// Threshold computes the dynamic acceptance bar for a ranked candidate list.
func Threshold(question string, top Candidate, recordCount int) float64 {
	threshold := baseThreshold
	if len(scoring.Tokenize(question)) > longQuestionTokens {
		threshold -= 0.1
	}
	if top.Combined > strongMatch {
		threshold -= 0.1
	}
	if recordCount < sparseMemory {
		threshold += 0.1
	}
	if threshold < thresholdFloor {
		threshold = thresholdFloor
	}
	return threshold
}

// Retrieve returns the user's best-matching record when it clears the
// dynamic threshold, bumping its usage stats. Returns nil without error when
// nothing qualifies.
func (u *UseCase) Retrieve(ctx context.Context, userID, question string, subject model.Subject) (*model.MemoryRecord, error) {
	if userID == "" {
		return nil, goerr.New("user ID is required")
	}
	if question == "" {
		return nil, goerr.New("question is required")
	}

	records, err := u.repo.ListRecords(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load memory records", goerr.V("user", userID))
	}
	if len(records) == 0 {
		return nil, nil
	}

	now := u.now()
	candidates := u.Rank(question, subject, records, now)
	top := candidates[0]
	threshold := Threshold(question, top, len(records))

	logger := logging.From(ctx)
	logger.Debug("scored memory candidates",
		"user", userID,
		"records", len(records),
		"top_combined", top.Combined,
		"top_total", top.Total(),
		"threshold", threshold,
	)

	if top.Total() <= threshold {
		return nil, nil
	}

	hit := top.Record
	hit.UsageCount++
	hit.LastUsedAt = &now

	if err := u.repo.UpdateUsage(ctx, userID, hit.ID, hit.UsageCount, now); err != nil {
		// A hit is still a hit when the usage bump cannot be persisted
		logger.Warn("failed to persist usage update",
			"user", userID, "id", hit.ID, "error", err)
	}

	return hit, nil
}
