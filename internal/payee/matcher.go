// Package payee resolves raw payee strings to learned canonical names with a
// two-tier exact/fuzzy lookup over the payee pattern store.
package payee

import (
	"sort"

	"github.com/Veraticus/ledger-reconcile/internal/model"
	"github.com/Veraticus/ledger-reconcile/internal/normalize"
	"github.com/Veraticus/ledger-reconcile/internal/similarity"
)

// Fuzzy candidates blend raw string similarity with the pattern's own
// learned confidence.
const (
	fuzzyStringWeight     = 0.75
	fuzzyConfidenceWeight = 0.25
)

// Config holds the matcher's tunables.
type Config struct {
	// LevenshteinThreshold is the maximum edit distance for a fuzzy candidate.
	LevenshteinThreshold int
	// MinConfidence discards fuzzy candidates with a lower blended confidence.
	MinConfidence float64
	// SuggestionLimit caps the ranked list returned by Suggestions.
	SuggestionLimit int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		LevenshteinThreshold: 3,
		MinConfidence:        0.6,
		SuggestionLimit:      3,
	}
}

// Matcher performs canonical-name lookup.
type Matcher struct {
	config Config
}

// NewMatcher creates a matcher with the given configuration.
func NewMatcher(config Config) *Matcher {
	return &Matcher{config: config}
}

// Match returns the single best canonical-name suggestion for raw, or false
// when nothing qualifies.
func (m *Matcher) Match(raw string, patterns []model.PayeePattern) (model.PayeeSuggestion, bool) {
	ranked := m.rank(raw, patterns)
	if len(ranked) == 0 {
		return model.PayeeSuggestion{}, false
	}
	return ranked[0], true
}

// Suggestions returns up to limit ranked candidates. A non-positive limit
// uses the configured default.
func (m *Matcher) Suggestions(raw string, patterns []model.PayeePattern, limit int) []model.PayeeSuggestion {
	if limit <= 0 {
		limit = m.config.SuggestionLimit
	}
	ranked := m.rank(raw, patterns)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func (m *Matcher) rank(raw string, patterns []model.PayeePattern) []model.PayeeSuggestion {
	key := normalize.ComparisonKey(raw)
	if key == "" {
		return nil
	}

	// Exact tier: the comparison key additionally strips numeric tokens, so
	// "AMAZON 4821" and "AMAZON 9012" equate.
	for _, pattern := range patterns {
		if normalize.ComparisonKey(pattern.Canonical) == key {
			return []model.PayeeSuggestion{{Canonical: pattern.Canonical, Confidence: 1.0}}
		}
		for _, variant := range pattern.Variants {
			if normalize.ComparisonKey(variant) == key {
				return []model.PayeeSuggestion{{Canonical: pattern.Canonical, Confidence: 1.0}}
			}
		}
	}

	return m.fuzzyRank(raw, patterns)
}

func (m *Matcher) fuzzyRank(raw string, patterns []model.PayeePattern) []model.PayeeSuggestion {
	input := similarity.ClipRunes(normalize.Payee(raw), similarity.MaxCompareRunes)
	if input == "" {
		return nil
	}

	// Best blended confidence per canonical name.
	best := make(map[string]float64)

	for _, pattern := range patterns {
		candidates := append([]string{pattern.Canonical}, pattern.Variants...)
		for _, candidate := range candidates {
			normalized := similarity.ClipRunes(normalize.Payee(candidate), similarity.MaxCompareRunes)
			if normalized == "" {
				continue
			}
			if similarity.Distance(input, normalized) > m.config.LevenshteinThreshold {
				continue
			}

			blended := fuzzyStringWeight*similarity.Ratio(input, normalized) +
				fuzzyConfidenceWeight*pattern.Confidence
			if blended < m.config.MinConfidence {
				continue
			}
			if blended > best[pattern.Canonical] {
				best[pattern.Canonical] = blended
			}
		}
	}

	ranked := make([]model.PayeeSuggestion, 0, len(best))
	for canonical, confidence := range best {
		ranked = append(ranked, model.PayeeSuggestion{Canonical: canonical, Confidence: confidence})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return ranked[i].Canonical < ranked[j].Canonical
	})
	return ranked
}
