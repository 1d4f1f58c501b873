package security

import (
	"regexp"
	"strings"
)

// Classifiers are stateless matchers over the static pattern tables. Each
// is a pure text -> bool function; they never touch per-user state.
type Classifiers struct {
	table PatternTable
}

// NewClassifiers creates classifiers over the given pattern table.
func NewClassifiers(table PatternTable) *Classifiers {
	return &Classifiers{table: table}
}

// base64Run matches a long run of base64-alphabet characters that may hide
// an encoded payload.
var base64Run = regexp.MustCompile(`[A-Za-z0-9+/]{50,}={0,2}`)

// heavyDelimiters are delimiter runs used to fence off injected
// instructions in a prompt.
var heavyDelimiters = []string{"---", "===", "***", "###"}

// instructionKeywords paired with heavy delimiters signal an injection
// attempt.
var instructionKeywords = []string{"instruction", "system", "prompt", "ignore"}

func (c *Classifiers) matchesCategory(category Category, text string) bool {
	for _, p := range c.table[category] {
		if p.Regex.MatchString(text) {
			return true
		}
	}
	return false
}

// IsPromptInjection reports whether text attempts instruction override,
// role hijack, system prompt disclosure, or hides a long encoded payload.
func (c *Classifiers) IsPromptInjection(text string) bool {
	if c.matchesCategory(CategoryInjection, text) {
		return true
	}

	lower := strings.ToLower(text)
	for _, delim := range heavyDelimiters {
		if strings.Contains(text, delim) {
			for _, keyword := range instructionKeywords {
				if strings.Contains(lower, keyword) {
					return true
				}
			}
			break
		}
	}

	return base64Run.MatchString(text)
}

// IsSQLInjection reports whether text contains SQL keyword/operator
// patterns.
func (c *Classifiers) IsSQLInjection(text string) bool {
	return c.matchesCategory(CategorySQL, text)
}

// IsCodeExecution reports whether text contains eval/exec/import style
// patterns.
func (c *Classifiers) IsCodeExecution(text string) bool {
	return c.matchesCategory(CategoryCodeExec, text)
}

// IsSensitiveInfoRequest reports whether text references credential-like
// terms.
func (c *Classifiers) IsSensitiveInfoRequest(text string) bool {
	return c.matchesCategory(CategorySensitive, text)
}

// IsDataTheft reports whether text asks for whole-dataset exports.
func (c *Classifiers) IsDataTheft(text string) bool {
	return c.matchesCategory(CategoryDataTheft, text)
}

// IsEnumeration reports whether text matches systematic enumeration
// phrasing.
func (c *Classifiers) IsEnumeration(text string) bool {
	return c.matchesCategory(CategoryEnumeration, text)
}

// JaccardSimilarity computes word-set similarity between two queries in
// [0, 1]. Used to spot near-duplicate query sequences.
func JaccardSimilarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}
