// Package engine runs the reconciliation pipeline over an imported batch:
// duplicate filtering, transfer pairing, then category and payee annotation.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/ledger-reconcile/internal/category"
	"github.com/Veraticus/ledger-reconcile/internal/common"
	"github.com/Veraticus/ledger-reconcile/internal/dedupe"
	"github.com/Veraticus/ledger-reconcile/internal/feature"
	"github.com/Veraticus/ledger-reconcile/internal/model"
	"github.com/Veraticus/ledger-reconcile/internal/payee"
	"github.com/Veraticus/ledger-reconcile/internal/service"
	"github.com/Veraticus/ledger-reconcile/internal/transfer"
)

// Config aggregates the tunables of every pipeline stage.
type Config struct {
	Dedupe   dedupe.Config
	Transfer transfer.Config
	Weights  category.Weights
	Payee    payee.Config
	// CacheTTL bounds how long a batch's transfer suggestions stay memoized.
	CacheTTL time.Duration
}

// DefaultConfig returns the documented defaults for every stage.
func DefaultConfig() Config {
	return Config{
		Dedupe:   dedupe.DefaultConfig(),
		Transfer: transfer.DefaultConfig(),
		Weights:  category.DefaultWeights(),
		Payee:    payee.DefaultConfig(),
		CacheTTL: 15 * time.Minute,
	}
}

// RowResult annotates one imported row with the pipeline's verdicts.
// Duplicate rows carry no category or payee suggestion.
type RowResult struct {
	Transaction model.ImportedTransaction `json:"transaction"`
	Duplicate   *model.DuplicateResult    `json:"duplicate,omitempty"`
	Category    *model.CategorySuggestion `json:"category,omitempty"`
	Payee       *model.PayeeSuggestion    `json:"payee,omitempty"`
}

// Stats summarizes one pipeline run.
type Stats struct {
	Total      int `json:"total"`
	Duplicates int `json:"duplicates"`
	Transfers  int `json:"transfers"`
	Categories int `json:"categories"`
	Payees     int `json:"payees"`
}

// Result is the full outcome of reconciling one batch. Rows preserve the
// batch's input order.
type Result struct {
	Rows      []RowResult                `json:"rows"`
	Transfers []model.TransferSuggestion `json:"transfers"`
	Stats     Stats                      `json:"stats"`
}

// Reconciler orchestrates the pipeline stages. It reads the ledger and the
// pattern stores but never writes; all learning goes through the learn package.
type Reconciler struct {
	ledger     service.LedgerReader
	categories service.CategoryPatternStore
	payees     service.PayeePatternStore

	detector  *dedupe.Detector
	suggester *transfer.Suggester
	scorer    *category.Scorer
	matcher   *payee.Matcher
	cache     *transfer.Cache
	config    Config
}

// NewReconciler creates a reconciler over the given ledger and stores.
func NewReconciler(ledger service.LedgerReader, categories service.CategoryPatternStore, payees service.PayeePatternStore, config Config) *Reconciler {
	return &Reconciler{
		ledger:     ledger,
		categories: categories,
		payees:     payees,
		detector:   dedupe.NewDetector(config.Dedupe),
		suggester:  transfer.NewSuggester(config.Transfer),
		scorer:     category.NewScorer(config.Weights),
		matcher:    payee.NewMatcher(config.Payee),
		cache:      transfer.NewCache(config.CacheTTL, nil),
		config:     config,
	}
}

// Reconcile runs the full pipeline over one imported batch.
//
// Ledger read failures abort the run: without the existing transactions the
// duplicate verdicts would be wrong. Pattern store read failures only degrade
// it: the run continues with no learned patterns and therefore no suggestions
// from the failed store.
func (r *Reconciler) Reconcile(ctx context.Context, batch []model.ImportedTransaction) (*Result, error) {
	if len(batch) == 0 {
		return nil, common.ErrEmptyBatch
	}

	existing, err := r.existingTransactions(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger window: %w", err)
	}

	result := &Result{
		Rows:  make([]RowResult, len(batch)),
		Stats: Stats{Total: len(batch)},
	}

	survivors := make([]model.ImportedTransaction, 0, len(batch))
	for i, txn := range batch {
		result.Rows[i] = RowResult{Transaction: txn}
		if verdict, ok := r.findDuplicate(txn, existing); ok {
			result.Rows[i].Duplicate = &verdict
			result.Stats.Duplicates++
			continue
		}
		survivors = append(survivors, txn)
	}

	result.Transfers = r.suggestTransfers(survivors)
	result.Stats.Transfers = len(result.Transfers)

	transferIDs := make(map[string]struct{}, len(result.Transfers)*2)
	for _, s := range result.Transfers {
		transferIDs[s.OutflowID] = struct{}{}
		transferIDs[s.InflowID] = struct{}{}
	}

	r.annotate(ctx, result, transferIDs)
	return result, nil
}

// existingTransactions loads the ledger rows the batch could collide with.
// The window is widened by one day on each side to absorb timezone skew.
func (r *Reconciler) existingTransactions(ctx context.Context, batch []model.ImportedTransaction) ([]model.LedgerTransaction, error) {
	start, end := batch[0].Date, batch[0].Date
	for _, txn := range batch[1:] {
		if txn.Date.Before(start) {
			start = txn.Date
		}
		if txn.Date.After(end) {
			end = txn.Date
		}
	}
	return r.ledger.GetTransactionsByDateRange(ctx, start.AddDate(0, 0, -1), end.AddDate(0, 0, 1))
}

func (r *Reconciler) findDuplicate(txn model.ImportedTransaction, existing []model.LedgerTransaction) (model.DuplicateResult, bool) {
	for _, candidate := range existing {
		if verdict := r.detector.Evaluate(txn, candidate); verdict.IsDuplicate {
			return verdict, true
		}
	}
	return model.DuplicateResult{}, false
}

func (r *Reconciler) suggestTransfers(survivors []model.ImportedTransaction) []model.TransferSuggestion {
	key := transfer.CacheKey(survivors, r.config.Transfer)
	if cached, ok := r.cache.Get(key); ok {
		return cached
	}
	suggestions := r.suggester.Suggest(survivors, transfer.Options{})
	r.cache.Set(key, suggestions)
	return suggestions
}

// annotate attaches category and payee suggestions to every surviving row.
// Rows already claimed by a transfer pair skip category scoring; the pair
// itself is the suggestion for them.
func (r *Reconciler) annotate(ctx context.Context, result *Result, transferIDs map[string]struct{}) {
	categoryPatterns, err := r.categories.List(ctx)
	if err != nil {
		common.LogError(err, "category patterns unavailable, skipping category suggestions", nil)
		categoryPatterns = nil
	}
	payeePatterns, err := r.payees.List(ctx)
	if err != nil {
		common.LogError(err, "payee patterns unavailable, skipping payee suggestions", nil)
		payeePatterns = nil
	}

	for i := range result.Rows {
		row := &result.Rows[i]
		if row.Duplicate != nil {
			continue
		}

		if _, isTransfer := transferIDs[row.Transaction.ID]; !isTransfer && len(categoryPatterns) > 0 {
			features := feature.Extract(row.Transaction)
			if suggestion, ok := r.scorer.BestMatch(features, categoryPatterns); ok {
				row.Category = &suggestion
				result.Stats.Categories++
			}
		}

		if len(payeePatterns) > 0 {
			if suggestion, ok := r.matcher.Match(row.Transaction.Payee, payeePatterns); ok {
				row.Payee = &suggestion
				result.Stats.Payees++
			}
		}
	}
}
