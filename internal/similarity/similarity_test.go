package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "identical", a: "starbucks", b: "starbucks", want: 0},
		{name: "single substitution", a: "kitten", b: "mitten", want: 1},
		{name: "classic kitten sitting", a: "kitten", b: "sitting", want: 3},
		{name: "empty vs word", a: "", b: "cafe", want: 4},
		{name: "both empty", a: "", b: "", want: 0},
		{name: "unicode code points", a: "café", b: "cafe", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
		})
	}
}

func TestDistanceSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"amazon", "amazn"},
		{"tim hortons", "tim horton s"},
		{"", "x"},
		{"café dépôt", "cafe depot"},
	}

	for _, p := range pairs {
		assert.Equal(t, Distance(p[0], p[1]), Distance(p[1], p[0]), "distance(%q,%q)", p[0], p[1])
	}
}

func TestDistanceTriangleInequality(t *testing.T) {
	words := []string{"amazon", "amazn", "amzn mktp", "starbucks", ""}

	for _, a := range words {
		for _, b := range words {
			for _, c := range words {
				assert.LessOrEqual(t, Distance(a, c), Distance(a, b)+Distance(b, c),
					"triangle inequality for (%q,%q,%q)", a, b, c)
			}
		}
	}
}

func TestJaccard(t *testing.T) {
	set := func(toks ...string) map[string]struct{} {
		s := make(map[string]struct{}, len(toks))
		for _, tok := range toks {
			s[tok] = struct{}{}
		}
		return s
	}

	tests := []struct {
		a    map[string]struct{}
		b    map[string]struct{}
		name string
		want float64
	}{
		{name: "both empty", a: set(), b: set(), want: 1.0},
		{name: "identical", a: set("tim", "hortons"), b: set("tim", "hortons"), want: 1.0},
		{name: "disjoint", a: set("a", "b"), b: set("c", "d"), want: 0.0},
		{name: "half overlap", a: set("a", "b"), b: set("b", "c"), want: 1.0 / 3.0},
		{name: "one empty", a: set("a"), b: set(), want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identity is 1", a: "starbucks", b: "starbucks", want: 1.0},
		{name: "empty returns 0", a: "", b: "anything", want: 0.0},
		{name: "both empty returns 0", a: "", b: "", want: 0.0},
		{name: "no common chars equal length", a: "abcd", b: "wxyz", want: 0.0},
		{name: "one edit in ten runes", a: "abcdefghij", b: "abcdefghix", want: 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRatioIdentityProperty(t *testing.T) {
	for _, s := range []string{"a", "starbucks", "café dépôt 42", "x y z"} {
		assert.InDelta(t, 1.0, Ratio(s, s), 1e-9, "similarity(%q,%q)", s, s)
	}
}

func TestClipRunes(t *testing.T) {
	assert.Equal(t, "abc", ClipRunes("abcdef", 3))
	assert.Equal(t, "abc", ClipRunes("abc", 10))
	assert.Equal(t, "café", ClipRunes("café dépôt", 4))
}
