// Package dedupe compares an imported transaction against an existing ledger
// transaction and decides whether the import is a duplicate.
package dedupe

import (
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/ledger-reconcile/internal/model"
	"github.com/Veraticus/ledger-reconcile/internal/normalize"
	"github.com/Veraticus/ledger-reconcile/internal/similarity"
)

// Config holds the detector's tunables.
type Config struct {
	// SimilarityThreshold is the minimum payee similarity ratio for a fuzzy
	// duplicate verdict.
	SimilarityThreshold float64
	// UseNormalizedPayee selects the deterministic normalizer over a naive
	// lowercase/trim fallback. It changes only how payees are compared,
	// never which gates apply.
	UseNormalizedPayee bool
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.85,
		UseNormalizedPayee:  true,
	}
}

// Detector evaluates (imported, existing) pairs.
type Detector struct {
	config Config
}

// NewDetector creates a detector with the given configuration.
func NewDetector(config Config) *Detector {
	return &Detector{config: config}
}

// Evaluate decides whether imported duplicates existing. Same calendar day
// and exactly equal signed amount are hard gates; failing either
// short-circuits to "not a duplicate" without further comparison.
func (d *Detector) Evaluate(imported model.ImportedTransaction, existing model.LedgerTransaction) model.DuplicateResult {
	if !sameCalendarDay(imported, existing) {
		return model.DuplicateResult{IsDuplicate: false}
	}
	if imported.Amount != existing.Amount {
		return model.DuplicateResult{IsDuplicate: false}
	}

	// Identity-hash fast path: byte-identical date/amount/payee/account rows
	// (a re-imported export) need no payee comparison at all.
	if imported.GenerateHash() == existing.GenerateHash() {
		return duplicate(existing.ID, "exact payee match")
	}

	importedPayee := d.comparablePayee(imported.Payee)
	existingPayee := d.comparablePayee(existing.Payee)

	if importedPayee != "" && importedPayee == existingPayee {
		return duplicate(existing.ID, "exact payee match")
	}

	if importedPayee != "" && existingPayee != "" &&
		(strings.HasPrefix(importedPayee, existingPayee) || strings.HasPrefix(existingPayee, importedPayee)) {
		return duplicate(existing.ID, "payee prefix match")
	}

	if ratio := similarity.Ratio(importedPayee, existingPayee); ratio >= d.config.SimilarityThreshold {
		pct := int(math.Round(ratio * 100))
		return duplicate(existing.ID, fmt.Sprintf("payee similarity %d%%", pct))
	}

	if memosMatch(imported.Memo, existing.Memo) {
		return duplicate(existing.ID, "memo match")
	}

	return model.DuplicateResult{IsDuplicate: false}
}

func (d *Detector) comparablePayee(raw string) string {
	if d.config.UseNormalizedPayee {
		return normalize.Payee(raw)
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

func duplicate(existingID, reason string) model.DuplicateResult {
	return model.DuplicateResult{
		IsDuplicate: true,
		Reason:      reason,
		ExistingID:  existingID,
	}
}

func sameCalendarDay(imported model.ImportedTransaction, existing model.LedgerTransaction) bool {
	y1, m1, d1 := imported.Date.Date()
	y2, m2, d2 := existing.Date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func memosMatch(a, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	ma := strings.ToLower(strings.TrimSpace(*a))
	mb := strings.ToLower(strings.TrimSpace(*b))
	return ma != "" && ma == mb
}
