package scoring

import (
	"math"
	"time"
)

// decayDays is the e-folding time for memory freshness
const decayDays = 30.0

// Recency scores how fresh a record is: exponential decay exp(-ageDays/30).
// Exactly 1 at age zero, clamped to 1 for future timestamps, never 0.
func Recency(createdAt, now time.Time) float64 {
	ageDays := now.Sub(createdAt).Hours() / 24
	if ageDays <= 0 {
		return 1
	}
	return math.Exp(-ageDays / decayDays)
}
