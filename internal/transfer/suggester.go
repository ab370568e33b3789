// Package transfer finds plausible outflow/inflow pairs across accounts
// within one imported batch.
package transfer

import (
	"math"
	"sort"
	"time"

	"github.com/Veraticus/ledger-reconcile/internal/feature"
	"github.com/Veraticus/ledger-reconcile/internal/model"
	"github.com/Veraticus/ledger-reconcile/internal/normalize"
)

// Scoring constants. The score starts at 1.0 per candidate pair.
const (
	maxDayPenalty     = 0.50
	outflowHintBonus  = 0.12
	inflowHintBonus   = 0.08
	sharedTokenBonus  = 0.06
	minSharedTokenLen = 3
)

// Config holds the suggester's tunables.
type Config struct {
	// MaxDaysApart is the widest calendar-day gap between the two legs.
	MaxDaysApart int
	// MinScore is the floor below which candidate pairs are discarded.
	MinScore float64
	// MaxSuggestions truncates the final ranked list.
	MaxSuggestions int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxDaysApart:   3,
		MinScore:       0.70,
		MaxSuggestions: 60,
	}
}

// Options carries the caller-supplied accessors. Nil fields fall back to
// engine defaults.
type Options struct {
	// Eligible filters out rows the caller has already handled (nil = all).
	Eligible func(model.ImportedTransaction) bool
	// TransferHint reports whether a row looks like a transfer
	// (nil = the feature extractor's keyword flag).
	TransferHint func(model.ImportedTransaction) bool
}

// Suggester pairs outflows with inflows of the same magnitude.
type Suggester struct {
	config Config
}

// NewSuggester creates a suggester with the given configuration.
func NewSuggester(config Config) *Suggester {
	return &Suggester{config: config}
}

// Suggest scans the batch and returns ranked transfer pair suggestions.
// Work is O(n²) within each same-magnitude bucket; buckets are small in
// practice and the property tests pin this grouping behavior.
func (s *Suggester) Suggest(batch []model.ImportedTransaction, opts Options) []model.TransferSuggestion {
	eligible := opts.Eligible
	if eligible == nil {
		eligible = func(model.ImportedTransaction) bool { return true }
	}
	hint := opts.TransferHint
	if hint == nil {
		hint = func(txn model.ImportedTransaction) bool {
			return feature.Extract(txn).TransferKeyword
		}
	}

	buckets := make(map[int64][]model.ImportedTransaction)
	for _, txn := range batch {
		if txn.Amount == 0 || !eligible(txn) {
			continue
		}
		key := int64(math.Round(math.Abs(txn.Amount) * 100))
		buckets[key] = append(buckets[key], txn)
	}

	seen := make(map[string]struct{})
	var results []model.TransferSuggestion

	for _, group := range buckets {
		var outflows, inflows []model.ImportedTransaction
		for _, txn := range group {
			if txn.Amount < 0 {
				outflows = append(outflows, txn)
			} else {
				inflows = append(inflows, txn)
			}
		}

		for _, out := range outflows {
			best, ok := s.bestInflow(out, inflows, hint)
			if !ok {
				continue
			}
			if _, dup := seen[best.PairKey()]; dup {
				continue
			}
			seen[best.PairKey()] = struct{}{}
			results = append(results, best)
		}
	}

	// The pair key breaks remaining ties so ranking, and therefore the
	// truncation boundary below, never depends on bucket iteration order.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].DaysApart != results[j].DaysApart {
			return results[i].DaysApart < results[j].DaysApart
		}
		return results[i].PairKey() < results[j].PairKey()
	})

	if len(results) > s.config.MaxSuggestions {
		results = results[:s.config.MaxSuggestions]
	}
	return results
}

// bestInflow returns the highest-scoring eligible inflow for one outflow.
func (s *Suggester) bestInflow(out model.ImportedTransaction, inflows []model.ImportedTransaction, hint func(model.ImportedTransaction) bool) (model.TransferSuggestion, bool) {
	var best model.TransferSuggestion
	found := false

	for _, in := range inflows {
		if in.AccountID == out.AccountID {
			continue
		}

		days := calendarDaysApart(out, in)
		if days > s.config.MaxDaysApart {
			continue
		}

		score := 1.0 - maxDayPenalty*float64(days)/float64(s.config.MaxDaysApart)
		if hint(out) {
			score += outflowHintBonus
		}
		if hint(in) {
			score += inflowHintBonus
		}
		if sharesToken(out, in) {
			score += sharedTokenBonus
		}
		if score > 1 {
			score = 1
		}
		if score < s.config.MinScore {
			continue
		}

		if !found || score > best.Score || (score == best.Score && days < best.DaysApart) {
			best = model.TransferSuggestion{
				OutflowID: out.ID,
				InflowID:  in.ID,
				Score:     score,
				DaysApart: days,
			}
			found = true
		}
	}

	return best, found
}

func calendarDaysApart(a, b model.ImportedTransaction) int {
	da := dateOnly(a.Date)
	db := dateOnly(b.Date)
	days := int(db.Sub(da).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// dateOnly rebuilds the date in UTC so day arithmetic ignores clock time
// and DST transitions.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sharesToken reports whether the two rows share any token of at least
// minSharedTokenLen characters in raw payee or memo.
func sharesToken(a, b model.ImportedTransaction) bool {
	tokensA := searchTokens(a)
	if len(tokensA) == 0 {
		return false
	}
	for tok := range searchTokens(b) {
		if _, ok := tokensA[tok]; ok {
			return true
		}
	}
	return false
}

func searchTokens(txn model.ImportedTransaction) map[string]struct{} {
	text := txn.Payee
	if txn.Memo != nil {
		text += " " + *txn.Memo
	}
	tokens := normalize.Tokens(text)
	for tok := range tokens {
		if len(tok) < minSharedTokenLen {
			delete(tokens, tok)
		}
	}
	return tokens
}
