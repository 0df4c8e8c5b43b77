package scoring

import (
	"regexp"
	"strings"

	"github.com/vidyalab/sahayak/pkg/model"
)

// DetectSubject picks the subject whose concept list scores the most hits in
// the question. Mathematics wins ties and is the default when nothing hits.
func DetectSubject(question string, lexicon *Lexicon) model.Subject {
	n := Normalize(question)

	subjects := []struct {
		subject model.Subject
		terms   []string
	}{
		{model.SubjectMathematics, lexicon.Mathematics},
		{model.SubjectPhysics, lexicon.Physics},
		{model.SubjectChemistry, lexicon.Chemistry},
	}

	best := model.SubjectMathematics
	bestHits := 0
	for _, s := range subjects {
		hits := 0
		for _, term := range s.terms {
			if term != "" && strings.Contains(n, term) {
				hits++
			}
		}
		if hits > bestHits {
			best = s.subject
			bestHits = hits
		}
	}
	return best
}

var numericalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+\s*[+\-*/^]\s*\d+`),
	regexp.MustCompile(`solve|calculate|compute|find\s+the\s+value`),
	regexp.MustCompile(`equation|integral|derivative|limit`),
	regexp.MustCompile(`=\s*\?|\?\s*=`),
	regexp.MustCompile(`\d+\s*x\s*\d+`),
}

// IsNumerical reports whether the question asks for a computation rather
// than an explanation.
func IsNumerical(question string) bool {
	lower := strings.ToLower(question)
	for _, p := range numericalPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}
