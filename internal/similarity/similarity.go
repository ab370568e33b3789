// Package similarity provides the string comparison primitives shared by
// every matcher: edit distance, token-set overlap, and a length-normalized
// similarity ratio.
package similarity

import (
	"github.com/agnivade/levenshtein"
)

// MaxCompareRunes is the length bound applied before edit-distance
// computation on untrusted input. The distance is O(n*m) in time and space.
const MaxCompareRunes = 128

// Distance returns the Levenshtein edit distance between a and b, computed
// over Unicode code points. Callers comparing untrusted input should clip
// with ClipRunes first.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Jaccard returns |A∩B| / |A∪B| over two token sets. Two empty sets are
// defined as identical (1.0).
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Ratio returns (maxLen - distance) / maxLen clamped to [0,1], where lengths
// are counted in runes. Either string being empty yields 0.
func Ratio(a, b string) float64 {
	runesA := []rune(a)
	runesB := []rune(b)
	if len(runesA) == 0 || len(runesB) == 0 {
		return 0
	}

	maxLen := len(runesA)
	if len(runesB) > maxLen {
		maxLen = len(runesB)
	}

	ratio := float64(maxLen-Distance(a, b)) / float64(maxLen)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// ClipRunes truncates s to at most max runes.
func ClipRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
