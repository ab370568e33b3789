// Package learn implements the feedback loop: user confirmations and
// rejections evolve the pattern stores. The Apply* functions are pure
// read-modify-write transforms so they are testable without a store.
package learn

import (
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/ledger-reconcile/internal/model"
	"github.com/Veraticus/ledger-reconcile/internal/normalize"
)

const (
	confirmIncrement = 0.1
	rejectDecrement  = 0.15

	// initialConfidence seeds a pattern created from its first confirmation.
	initialConfidence = 0.5

	// Fees outside this window are treated as unrelated charges, not
	// transfer fees.
	feeWindowMax = 20.0

	minKeywordLen = 4
)

// clampConfidence keeps confidence in [0,1] after every update.
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// NewPayeePattern creates a pattern from a first confirmed rename.
func NewPayeePattern(original, canonical string, now time.Time) model.PayeePattern {
	p := model.PayeePattern{
		Canonical:  canonical,
		Confidence: initialConfidence,
		UseCount:   1,
		LastUsed:   now,
		CreatedAt:  now,
	}
	if !strings.EqualFold(strings.TrimSpace(original), strings.TrimSpace(canonical)) {
		p.Variants = []string{original}
	}
	return p
}

// ApplyPayeeConfirmation records one accepted rename on an existing pattern.
// Variant insertion is idempotent; the list is bounded with FIFO eviction.
func ApplyPayeeConfirmation(p model.PayeePattern, original string, now time.Time) model.PayeePattern {
	if !hasVariant(p, original) && !strings.EqualFold(strings.TrimSpace(original), strings.TrimSpace(p.Canonical)) {
		p.Variants = append(p.Variants, original)
		if len(p.Variants) > model.MaxPayeeVariants {
			p.Variants = p.Variants[len(p.Variants)-model.MaxPayeeVariants:]
		}
	}
	p.Confidence = clampConfidence(p.Confidence + confirmIncrement)
	p.UseCount++
	p.LastUsed = now
	return p
}

func hasVariant(p model.PayeePattern, original string) bool {
	key := normalize.Payee(original)
	for _, v := range p.Variants {
		if normalize.Payee(v) == key {
			return true
		}
	}
	return false
}

// NewCategoryPattern creates a pattern from a first confirmed categorization.
func NewCategoryPattern(features model.TransactionFeatures, categoryName string, now time.Time) model.CategoryPattern {
	p := model.CategoryPattern{
		PayeePattern: features.NormalizedPayee,
		Category:     categoryName,
		Confidence:   initialConfidence,
		UseCount:     1,
		LastUsed:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	amount := features.AbsAmount
	p.AmountMin = &amount
	p.AmountMax = &amount
	p.TypicalAmount = &amount
	day := features.DayOfWeek
	p.CommonDay = &day
	p.MemoKeywords = memoKeywords(features, nil)
	return p
}

// ApplyCategoryConfirmation folds one accepted categorization into a pattern.
func ApplyCategoryConfirmation(p model.CategoryPattern, features model.TransactionFeatures, now time.Time) model.CategoryPattern {
	p.Confidence = clampConfidence(p.Confidence + confirmIncrement)
	p.UseCount++
	p.LastUsed = now
	p.UpdatedAt = now

	amount := features.AbsAmount
	if p.AmountMin == nil || amount < *p.AmountMin {
		p.AmountMin = &amount
	}
	if p.AmountMax == nil || amount > *p.AmountMax {
		p.AmountMax = &amount
	}
	p.TypicalAmount = runningMean(p.TypicalAmount, amount, p.UseCount)

	// The common day survives only while confirmations keep agreeing.
	if p.CommonDay != nil && *p.CommonDay != features.DayOfWeek {
		p.CommonDay = nil
	}

	p.MemoKeywords = memoKeywords(features, p.MemoKeywords)
	return p
}

// ApplyCategoryRejection weakens a pattern after the user overrides it.
func ApplyCategoryRejection(p model.CategoryPattern, now time.Time) model.CategoryPattern {
	p.Confidence = clampConfidence(p.Confidence - rejectDecrement)
	p.UpdatedAt = now
	return p
}

// TransferConfirmation describes one accepted transfer link.
type TransferConfirmation struct {
	Outflow model.ImportedTransaction
	Inflow  model.ImportedTransaction
}

// NewTransferPattern creates a pattern from a first confirmed link.
func NewTransferPattern(c TransferConfirmation, now time.Time) model.TransferPattern {
	p := model.TransferPattern{
		AccountPairKey: model.TransferPatternKey(c.Outflow.AccountID, c.Inflow.AccountID),
		CreatedAt:      now,
	}
	return ApplyTransferConfirmation(p, c, now)
}

// ApplyTransferConfirmation folds one accepted link into a pattern.
func ApplyTransferConfirmation(p model.TransferPattern, c TransferConfirmation, now time.Time) model.TransferPattern {
	p.UseCount++
	p.SuccessfulMatches++
	p.LastUsed = now

	amount := abs(c.Outflow.Amount)
	if p.AmountMin == nil || amount < *p.AmountMin {
		p.AmountMin = &amount
	}
	if p.AmountMax == nil || amount > *p.AmountMax {
		p.AmountMax = &amount
	}

	if fee := amount - abs(c.Inflow.Amount); fee > 0 && fee < feeWindowMax {
		p.FeeSamples++
		p.FeeEstimate = runningMean(p.FeeEstimate, fee, p.FeeSamples)
	}

	hours := c.Inflow.Date.Sub(c.Outflow.Date).Hours()
	if hours < 0 {
		hours = -hours
	}
	if p.HoursMin == nil || hours < *p.HoursMin {
		p.HoursMin = &hours
	}
	if p.HoursMax == nil || hours > *p.HoursMax {
		p.HoursMax = &hours
	}
	p.HourSamples++
	p.TypicalHours = runningMean(p.TypicalHours, hours, p.HourSamples)

	p.CommonDayOfMonth, p.DayVotes = voteDayOfMonth(p.CommonDayOfMonth, p.DayVotes, dayOfMonthBucket(c.Outflow.Date))
	p.CommonWords = mergeCommonWords(p.CommonWords, sharedWords(c))

	return p
}

// ApplyTransferRejection records a rejected link. Once rejections exceed
// twice the successes, the learned ranges are cleared to force re-learning;
// the pattern itself survives.
func ApplyTransferRejection(p model.TransferPattern, now time.Time) model.TransferPattern {
	p.RejectedMatches++
	p.LastUsed = now

	if p.RejectedMatches > 2*p.SuccessfulMatches {
		p.AmountMin = nil
		p.AmountMax = nil
		p.HoursMin = nil
		p.HoursMax = nil
		p.TypicalHours = nil
		p.HourSamples = 0
	}
	return p
}

// runningMean folds sample n into a first-sample-seeded simple mean.
func runningMean(old *float64, sample float64, n int) *float64 {
	if old == nil || n <= 1 {
		return &sample
	}
	mean := (*old*float64(n-1) + sample) / float64(n)
	return &mean
}

// dayOfMonthBucket maps month-end days (28+) to the 0 bucket so transfers
// scheduled "last day of month" agree across months of different lengths.
func dayOfMonthBucket(t time.Time) int {
	day := t.Day()
	if day >= 28 {
		return 0
	}
	return day
}

// voteDayOfMonth is a majority-vote counter: agreement strengthens the common
// day, disagreement weakens it, and at zero votes the new day takes over.
func voteDayOfMonth(current *int, votes, day int) (*int, int) {
	if current == nil {
		return &day, 1
	}
	if *current == day {
		return current, votes + 1
	}
	votes--
	if votes <= 0 {
		return &day, 1
	}
	return current, votes
}

// sharedWords returns the sorted intersection of both legs' tokens. Sorting
// keeps FIFO eviction in mergeCommonWords deterministic across runs.
func sharedWords(c TransferConfirmation) []string {
	out := transferWords(c.Outflow)
	var shared []string
	for word := range transferWords(c.Inflow) {
		if _, ok := out[word]; ok {
			shared = append(shared, word)
		}
	}
	sort.Strings(shared)
	return shared
}

func transferWords(txn model.ImportedTransaction) map[string]struct{} {
	text := txn.Payee
	if txn.Memo != nil {
		text += " " + *txn.Memo
	}
	words := normalize.Tokens(text)
	for word := range words {
		if len(word) < 3 {
			delete(words, word)
		}
	}
	return words
}

func mergeCommonWords(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, w := range existing {
		seen[w] = struct{}{}
	}
	for _, w := range incoming {
		if _, ok := seen[w]; ok {
			continue
		}
		existing = append(existing, w)
		seen[w] = struct{}{}
	}
	if len(existing) > model.MaxCommonWords {
		existing = existing[len(existing)-model.MaxCommonWords:]
	}
	return existing
}

func memoKeywords(features model.TransactionFeatures, existing []string) []string {
	var incoming []string
	for token := range features.MemoTokens {
		if len(token) >= minKeywordLen {
			incoming = append(incoming, token)
		}
	}
	sort.Strings(incoming)
	return mergeCommonWords(existing, incoming)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
