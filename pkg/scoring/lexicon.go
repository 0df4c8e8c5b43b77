package scoring

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// Lexicon holds the concept keyword lists consulted by ConceptSimilarity and
// DetectSubject. Plain data, kept apart from the scoring logic so deployments
// can extend the lists without touching code. Terms must be lowercase.
type Lexicon struct {
	Mathematics []string `yaml:"mathematics"`
	Physics     []string `yaml:"physics"`
	Chemistry   []string `yaml:"chemistry"`
}

// DefaultLexicon returns the built-in concept lists
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Mathematics: []string{
			"derivative", "integral", "calculus", "algebra", "geometry",
			"trigonometry", "equation", "function", "matrix", "vector",
			"probability", "statistics", "limit", "theorem", "polynomial",
		},
		Physics: []string{
			"force", "energy", "momentum", "velocity", "acceleration",
			"gravity", "wave", "optics", "electricity", "magnetism",
			"current", "circuit", "thermodynamics", "quantum", "friction",
		},
		Chemistry: []string{
			"atom", "molecule", "reaction", "acid", "base",
			"electron", "compound", "element", "bond", "organic",
			"periodic", "oxidation", "equilibrium", "catalyst", "titration",
		},
	}
}

// LoadLexicon reads concept lists from a YAML file
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read lexicon file", goerr.V("path", path))
	}

	var lx Lexicon
	if err := yaml.Unmarshal(data, &lx); err != nil {
		return nil, goerr.Wrap(err, "failed to parse lexicon file", goerr.V("path", path))
	}

	if len(lx.Mathematics)+len(lx.Physics)+len(lx.Chemistry) == 0 {
		return nil, goerr.New("lexicon file has no terms", goerr.V("path", path))
	}

	for _, list := range [][]string{lx.Mathematics, lx.Physics, lx.Chemistry} {
		for i, term := range list {
			list[i] = strings.ToLower(strings.TrimSpace(term))
		}
	}

	return &lx, nil
}

// Concepts returns the set of lexicon terms that appear in s. Matching is by
// substring against the normalized string.
func (x *Lexicon) Concepts(s string) map[string]struct{} {
	n := Normalize(s)
	found := make(map[string]struct{})
	if n == "" {
		return found
	}
	for _, list := range [][]string{x.Mathematics, x.Physics, x.Chemistry} {
		for _, term := range list {
			if term == "" {
				continue
			}
			if strings.Contains(n, term) {
				found[term] = struct{}{}
			}
		}
	}
	return found
}
