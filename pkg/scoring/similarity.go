package scoring

import "regexp"

// Weights controls how the three sub-scores blend into one similarity value.
// Two presets exist because both call patterns exist in the product: the chat
// path scores with HybridWeights, the plain search path with LexicalWeights.
type Weights struct {
	Lexical    float64
	Concept    float64
	Structural float64
}

// HybridWeights blends all three sub-scores: lexical at 0.4, the remaining
// 0.6 split 7:3 between concept and structural overlap.
func HybridWeights() Weights {
	return Weights{
		Lexical:    0.4,
		Concept:    0.6 * 0.7,
		Structural: 0.6 * 0.3,
	}
}

// LexicalWeights scores on token overlap alone
func LexicalWeights() Weights {
	return Weights{Lexical: 1.0}
}

// Similarity returns the weighted blend of the three sub-scores for a and b,
// clamped to [0,1].
func (w Weights) Similarity(a, b string, lexicon *Lexicon) float64 {
	score := w.Lexical*LexicalSimilarity(a, b) +
		w.Concept*ConceptSimilarity(a, b, lexicon) +
		w.Structural*StructuralSimilarity(a, b)
	return clamp01(score)
}

// LexicalSimilarity is the Jaccard index over the normalized token sets of a
// and b. Defined as 0 when both sets are empty.
func LexicalSimilarity(a, b string) float64 {
	return jaccard(tokenSet(a), tokenSet(b))
}

// ConceptSimilarity is the Jaccard index over the lexicon terms found in a
// and b. Terms are matched by substring against the normalized strings, so
// "derivatives" still hits the term "derivative".
func ConceptSimilarity(a, b string, lexicon *Lexicon) float64 {
	return jaccard(lexicon.Concepts(a), lexicon.Concepts(b))
}

// Question-intent categories. A category counts toward structural overlap
// only when it matches both strings.
var intentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bwhat\s+(is|are)\b`),
	regexp.MustCompile(`(?i)\bhow\s+(to|do|does|can)\b`),
	regexp.MustCompile(`(?i)\b(solve|find|calculate)\b`),
	regexp.MustCompile(`(?i)\b(explain|describe)\b`),
	regexp.MustCompile(`(?i)\b(why|when|where)\b`),
	regexp.MustCompile(`(?i)\b(prove|show|demonstrate)\b`),
}

// StructuralSimilarity reports the fraction of question-intent categories
// matched by both a and b.
func StructuralSimilarity(a, b string) float64 {
	matched := 0
	for _, p := range intentPatterns {
		if p.MatchString(a) && p.MatchString(b) {
			matched++
		}
	}
	return float64(matched) / float64(len(intentPatterns))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
