package scoring

import (
	"sort"
	"strings"
	"unicode"

	"github.com/Harshitk-cp/ise/internal/domain"
)

const (
	LexicalWeight  = 0.4
	SemanticWeight = 0.6

	LayerLexical  = "lexical"
	LayerSemantic = "semantic"
)

// synonymGroups canonicalize to their first member, the lexicographically smallest.
var synonymGroups = [][]string{
	{"decrease", "lower", "reduce"},
	{"hike", "increase", "raise"},
	{"ban", "forbid", "prohibit"},
	{"allow", "enable", "permit"},
	{"build", "construct"},
	{"buy", "purchase"},
	{"end", "stop", "terminate"},
	{"fix", "repair", "resolve"},
	{"beneficial", "good"},
	{"bad", "detrimental", "harmful"},
	{"clever", "intelligent", "smart"},
	{"dumb", "foolish", "stupid", "unintelligent"},
	{"fast", "quick", "rapid"},
	{"slow", "sluggish"},
	{"rich", "wealthy"},
	{"impoverished", "poor"},
	{"accurate", "true"},
	{"false", "inaccurate", "incorrect"},
	{"tax", "taxation", "taxes"},
	{"cheap", "inexpensive"},
}

var antonymPairs = [][2]string{
	{"intelligent", "unintelligent"},
	{"intelligent", "stupid"},
	{"smart", "dumb"},
	{"good", "bad"},
	{"good", "evil"},
	{"true", "false"},
	{"correct", "incorrect"},
	{"honest", "dishonest"},
	{"legal", "illegal"},
	{"moral", "immoral"},
	{"possible", "impossible"},
	{"responsible", "irresponsible"},
	{"relevant", "irrelevant"},
	{"effective", "ineffective"},
	{"efficient", "inefficient"},
	{"logical", "illogical"},
	{"rational", "irrational"},
	{"similar", "dissimilar"},
	{"agree", "disagree"},
	{"like", "dislike"},
	{"trust", "distrust"},
	{"approve", "disapprove"},
	{"expensive", "cheap"},
}

var negations = toSet("not", "no", "never", "neither", "nor", "without")

var stopwords = toSet(
	"a", "an", "the", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "do", "does", "did", "will", "would", "shall",
	"should", "may", "might", "must", "can", "could", "so", "yet", "both",
	"either", "for", "and", "but", "or", "as", "at", "by", "in", "of", "on",
	"to", "up", "it", "its", "this", "that", "these", "those", "i", "we",
	"you", "he", "she", "they", "them", "their", "our", "your", "my", "his", "her",
)

var (
	canonical = buildCanonical()
	antonyms  = buildAntonyms()
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func buildCanonical() map[string]string {
	m := make(map[string]string)
	for _, g := range synonymGroups {
		for _, w := range g {
			m[w] = g[0]
		}
	}
	return m
}

// buildAntonyms keys on canonical words so every member of a synonym group
// negates to the same canonical antonym.
func buildAntonyms() map[string]string {
	cands := make(map[string][]string)
	for _, p := range antonymPairs {
		a, b := canon(p[0]), canon(p[1])
		cands[a] = append(cands[a], b)
		cands[b] = append(cands[b], a)
	}
	m := make(map[string]string, len(cands))
	for w, list := range cands {
		best := list[0]
		for _, c := range list[1:] {
			if c < best {
				best = c
			}
		}
		m[w] = best
	}
	return m
}

func canon(w string) string {
	if c, ok := canonical[w]; ok {
		return c
	}
	return w
}

// Tokens returns the sorted canonical token set of a statement. A negation
// followed by a word with a known antonym collapses into that antonym;
// any other negation is kept as "not".
func Tokens(statement string) []string {
	words := strings.FieldsFunc(strings.ToLower(statement), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	set := make(map[string]struct{})
	for i := 0; i < len(words); i++ {
		w := words[i]
		if _, neg := negations[w]; neg {
			if i+1 < len(words) {
				if ant, ok := antonyms[canon(words[i+1])]; ok {
					set[ant] = struct{}{}
					i++
					continue
				}
			}
			set["not"] = struct{}{}
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		set[canon(w)] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Jaccard is |A∩B| / |A∪B| over sorted token sets. A statement with no
// content tokens matches nothing, itself included.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var inter, i, j int
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			inter++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// LexicalSimilarity is the Layer 1 score of two statements.
func LexicalSimilarity(a, b string) float64 {
	return Jaccard(Tokens(a), Tokens(b))
}

type EquivalencyResult struct {
	EquivalencyScore float64               `json:"equivalency_score"`
	Lexical          float64               `json:"lexical"`
	Semantic         *float64              `json:"semantic,omitempty"`
	Relationship     domain.Relationship   `json:"relationship"`
	Recommendation   domain.Recommendation `json:"recommendation"`
	LayersUsed       []string              `json:"layers_used"`
}

// ScoreEquivalency blends lexical overlap with an optional semantic score in [0,1].
func ScoreEquivalency(a, b string, semantic *float64) EquivalencyResult {
	lex := LexicalSimilarity(a, b)
	res := EquivalencyResult{
		EquivalencyScore: lex,
		Lexical:          lex,
		LayersUsed:       []string{LayerLexical},
	}
	if semantic != nil {
		s := clamp01(*semantic)
		res.Semantic = &s
		res.EquivalencyScore = LexicalWeight*lex + SemanticWeight*s
		res.LayersUsed = append(res.LayersUsed, LayerSemantic)
	}
	res.EquivalencyScore = clamp01(res.EquivalencyScore)
	res.Relationship = domain.ComputeRelationship(res.EquivalencyScore)
	res.Recommendation = res.Relationship.Recommendation()
	return res
}
