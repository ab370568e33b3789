// Package normalize provides deterministic payee text cleanup used before
// every string comparison in the engine.
package normalize

import (
	"strings"
	"unicode"
)

// Payee lowercases the input, replaces punctuation with spaces, and collapses
// runs of whitespace. The result is the basis for all payee comparisons.
func Payee(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// ComparisonKey normalizes like Payee and additionally drops purely numeric
// tokens, so reference numbers ("AMAZON 4821" vs "AMAZON 9012") compare equal.
func ComparisonKey(raw string) string {
	tokens := strings.Fields(Payee(raw))
	kept := tokens[:0]
	for _, tok := range tokens {
		if !isNumeric(tok) {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// Tokens returns the normalized token set of the input.
func Tokens(raw string) map[string]struct{} {
	fields := strings.Fields(Payee(raw))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
