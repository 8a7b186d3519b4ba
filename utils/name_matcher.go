package utils

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// NameMatch is the result of BestMatch. Index is -1 when there were no
// candidates. Ties counts other distinct candidates that reached Score.
type NameMatch struct {
	Name  string
	Index int
	Score int
	Ties  int
}

// Found reports whether any candidate was considered.
func (m NameMatch) Found() bool {
	return m.Index >= 0
}

// Ambiguous reports whether a different candidate scored equally well.
func (m NameMatch) Ambiguous() bool {
	return m.Ties > 0
}

// BestMatch returns the candidate most similar to name under TokenSortRatio.
// The first candidate with the maximal score wins.
func BestMatch(name string, candidates []string) NameMatch {
	best := NameMatch{Index: -1}
	if len(candidates) == 0 {
		return best
	}

	query := tokenSortKey(name)
	seen := make(map[string]bool)
	for i, candidate := range candidates {
		score := ratio(query, tokenSortKey(candidate))
		switch {
		case best.Index < 0 || score > best.Score:
			best = NameMatch{Name: candidate, Index: i, Score: score}
			seen = map[string]bool{candidate: true}
		case score == best.Score && !seen[candidate]:
			seen[candidate] = true
			best.Ties++
		}
	}
	return best
}

// TokenSortRatio scores two names 0..100 independently of word order, so
// "Doe John" and "John Doe" score 100.
func TokenSortRatio(a, b string) int {
	return ratio(tokenSortKey(a), tokenSortKey(b))
}

// tokenSortKey lowercases s, turns non-alphanumerics into separators and
// rejoins the sorted tokens with single spaces.
func tokenSortKey(s string) string {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// ratio is the normalized Indel similarity of two strings scaled to 0..100.
func ratio(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	total := len(r1) + len(r2)
	if len(r1) == 0 || len(r2) == 0 {
		return 0
	}

	dist := total - 2*lcsLength(r1, r2)
	return int(math.Round(100 * (1 - float64(dist)/float64(total))))
}

// lcsLength returns the length of the longest common subsequence.
func lcsLength(r1, r2 []rune) int {
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)

	for i := 1; i <= len(r1); i++ {
		for j := 1; j <= len(r2); j++ {
			if r1[i-1] == r2[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
