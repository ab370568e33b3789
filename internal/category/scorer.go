// Package category ranks learned category patterns against a transaction's
// features with an additive weighted heuristic.
package category

import (
	"math"
	"strings"

	"github.com/Veraticus/ledger-reconcile/internal/model"
	"github.com/Veraticus/ledger-reconcile/internal/normalize"
	"github.com/Veraticus/ledger-reconcile/internal/similarity"
)

// Weights holds every scoring constant. Each is independently tunable so
// tests can substitute deterministic weight sets.
type Weights struct {
	// ExactPayee is the dominant bonus for an exact normalized payee match.
	ExactPayee float64
	// PayeeContains applies when one normalized payee contains the other.
	PayeeContains float64
	// TokenOverlap is scaled by the Jaccard overlap of the payee token sets.
	TokenOverlap float64
	// LearnedPattern is scaled by the pattern's confidence.
	LearnedPattern float64
	// Reliability is a flat bonus for reliable patterns.
	Reliability float64
	// AmountRange applies when the amount falls inside the learned range.
	AmountRange float64
	// TypicalAmount applies when the amount is within 10% of the typical one.
	TypicalAmount float64
	// DayOfWeek applies when the day matches the pattern's common day.
	DayOfWeek float64
	// MemoKeyword applies when any learned memo keyword is present.
	MemoKeyword float64
	// TransferPenalty is subtracted when the transaction looks like a transfer.
	TransferPenalty float64
}

// DefaultWeights returns the production weight set.
func DefaultWeights() Weights {
	return Weights{
		ExactPayee:      1.0,
		PayeeContains:   0.5,
		TokenOverlap:    0.4,
		LearnedPattern:  0.3,
		Reliability:     0.15,
		AmountRange:     0.1,
		TypicalAmount:   0.1,
		DayOfWeek:       0.05,
		MemoKeyword:     0.1,
		TransferPenalty: 1.0,
	}
}

const typicalAmountTolerance = 0.10

// Scorer ranks category patterns for a transaction.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// ScoreAgainstPattern computes the non-negative heuristic score of one
// pattern for one transaction.
func (s *Scorer) ScoreAgainstPattern(features model.TransactionFeatures, pattern model.CategoryPattern) float64 {
	score := 0.0

	patternPayee := normalize.Payee(pattern.PayeePattern)
	switch {
	case patternPayee != "" && features.NormalizedPayee == patternPayee:
		score += s.weights.ExactPayee
	case patternPayee != "" && features.NormalizedPayee != "" &&
		(strings.Contains(features.NormalizedPayee, patternPayee) || strings.Contains(patternPayee, features.NormalizedPayee)):
		score += s.weights.PayeeContains
	default:
		overlap := similarity.Jaccard(features.PayeeTokens, normalize.Tokens(pattern.PayeePattern))
		score += overlap * s.weights.TokenOverlap
	}

	score += pattern.Confidence * s.weights.LearnedPattern

	if pattern.IsReliable() {
		score += s.weights.Reliability
	}

	if pattern.AmountMin != nil && pattern.AmountMax != nil &&
		features.AbsAmount >= *pattern.AmountMin && features.AbsAmount <= *pattern.AmountMax {
		score += s.weights.AmountRange
	}

	if pattern.TypicalAmount != nil && *pattern.TypicalAmount > 0 {
		if math.Abs(features.AbsAmount-*pattern.TypicalAmount) <= *pattern.TypicalAmount*typicalAmountTolerance {
			score += s.weights.TypicalAmount
		}
	}

	if pattern.CommonDay != nil && features.DayOfWeek == *pattern.CommonDay {
		score += s.weights.DayOfWeek
	}

	if s.memoKeywordPresent(features, pattern.MemoKeywords) {
		score += s.weights.MemoKeyword
	}

	// Apparent transfers should not receive category suggestions.
	if features.TransferKeyword {
		score -= s.weights.TransferPenalty
	}

	if score < 0 {
		return 0
	}
	return score
}

// BestMatch scans all candidate patterns and returns the single best
// suggestion. Ties keep the first pattern encountered; a zero best score
// means no suggestion.
func (s *Scorer) BestMatch(features model.TransactionFeatures, patterns []model.CategoryPattern) (model.CategorySuggestion, bool) {
	var best model.CategorySuggestion
	for _, pattern := range patterns {
		score := s.ScoreAgainstPattern(features, pattern)
		if score > best.Score {
			best = model.CategorySuggestion{
				Category:  pattern.Category,
				Score:     score,
				PatternID: pattern.ID,
			}
		}
	}
	return best, best.Score > 0
}

func (s *Scorer) memoKeywordPresent(features model.TransactionFeatures, keywords []string) bool {
	if features.Memo == "" {
		return false
	}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(features.Memo, kw) {
			return true
		}
	}
	return false
}
