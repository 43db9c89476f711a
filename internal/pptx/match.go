package pptx

import "strings"

// Category matching tolerates abbreviation and wording drift between
// the placement slip and the template row labels, e.g. "Management &
// Support Staff" against "Management and Support Staff" or "Mgmt Staff".

// jaccardThreshold is the token-overlap similarity needed for a match
// without either fallback check.
const jaccardThreshold = 0.6

// prefixProbeLen is how many normalised characters the substring
// containment fallback compares.
const prefixProbeLen = 15

// CategoryMatch reports how closely two category labels agree.
type CategoryMatch struct {
	// Score is the Jaccard token-set similarity in [0,1].
	Score float64
	// IsMatch is true when any acceptance rule fired.
	IsMatch bool
	// Method names the rule that accepted: "jaccard", "prefix",
	// "first-words", or "" when no match.
	Method string
}

// CalculateCategoryMatchScore scores a template category cell against a
// supplied category. Acceptance is Jaccard similarity >= 0.6 over
// normalised tokens, or first-15-character substring containment, or an
// exact first-three-word match.
func CalculateCategoryMatchScore(a, b string) CategoryMatch {
	na, nb := normaliseCategory(a), normaliseCategory(b)
	if na == "" || nb == "" {
		return CategoryMatch{}
	}

	ta, tb := categoryTokens(na), categoryTokens(nb)
	score := jaccard(ta, tb)
	m := CategoryMatch{Score: score}

	switch {
	case score >= jaccardThreshold:
		m.IsMatch, m.Method = true, "jaccard"
	case prefixContained(na, nb):
		m.IsMatch, m.Method = true, "prefix"
	case firstWordsEqual(na, nb, 3):
		m.IsMatch, m.Method = true, "first-words"
	}
	return m
}

// BestCategoryIndex returns the index of the first candidate that
// matches the template cell text, or -1 when none does.
func BestCategoryIndex(cellText string, candidates []string) int {
	for i, c := range candidates {
		if CalculateCategoryMatchScore(cellText, c).IsMatch {
			return i
		}
	}
	return -1
}

// normaliseCategory lowercases, expands ampersands and collapses
// whitespace so token comparison sees through formatting drift.
func normaliseCategory(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "&", " and ")
	return strings.Join(strings.Fields(s), " ")
}

// categoryTokens returns the set of words longer than 2 characters.
func categoryTokens(normalised string) map[string]bool {
	tokens := make(map[string]bool)
	for _, w := range strings.Fields(normalised) {
		w = strings.Trim(w, ".,:;()")
		if len(w) > 2 {
			tokens[w] = true
		}
	}
	return tokens
}

// jaccard is intersection over union of two token sets.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// prefixContained checks whether the first prefixProbeLen characters of
// either label appear in the other.
func prefixContained(a, b string) bool {
	pa, pb := a, b
	if len(pa) > prefixProbeLen {
		pa = pa[:prefixProbeLen]
	}
	if len(pb) > prefixProbeLen {
		pb = pb[:prefixProbeLen]
	}
	return strings.Contains(b, pa) || strings.Contains(a, pb)
}

// firstWordsEqual checks for an exact match of the first n words.
func firstWordsEqual(a, b string, n int) bool {
	wa, wb := strings.Fields(a), strings.Fields(b)
	if len(wa) < n || len(wb) < n {
		return false
	}
	for i := 0; i < n; i++ {
		if wa[i] != wb[i] {
			return false
		}
	}
	return true
}
