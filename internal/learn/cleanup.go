package learn

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/ledger-reconcile/internal/common"
	"github.com/Veraticus/ledger-reconcile/internal/model"
)

// CleanupConfig holds the retention window for the periodic cleanup pass.
type CleanupConfig struct {
	Retention time.Duration
}

// DefaultCleanupConfig returns the documented 90-day retention window.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{Retention: 90 * 24 * time.Hour}
}

// CleanupStats reports how many patterns each store dropped.
type CleanupStats struct {
	Categories int `json:"categories"`
	Payees     int `json:"payees"`
	Transfers  int `json:"transfers"`
}

// Cleanup deletes patterns that are both stale and unreliable, or
// overwhelmingly rejected. Patterns used within the retention window, and
// transfer patterns whose successes outnumber rejections three to one, are
// never deleted.
func (l *Learner) Cleanup(ctx context.Context, config CleanupConfig) (CleanupStats, error) {
	var stats CleanupStats
	now := l.clock.Now()

	categories, err := l.categories.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list category patterns: %w", err)
	}
	for _, p := range categories {
		if !categoryEligibleForCleanup(p, now, config.Retention) {
			continue
		}
		if err := l.categories.Delete(ctx, p.ID); err != nil {
			common.LogError(err, "category pattern delete failed, continuing", common.Fields{"id": p.ID})
			continue
		}
		stats.Categories++
	}

	payees, err := l.payees.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list payee patterns: %w", err)
	}
	for _, p := range payees {
		if !payeeEligibleForCleanup(p, now, config.Retention) {
			continue
		}
		if err := l.payees.Delete(ctx, p.ID); err != nil {
			common.LogError(err, "payee pattern delete failed, continuing", common.Fields{"id": p.ID})
			continue
		}
		stats.Payees++
	}

	transfers, err := l.transfers.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list transfer patterns: %w", err)
	}
	for _, p := range transfers {
		if !transferEligibleForCleanup(p, now, config.Retention) {
			continue
		}
		if err := l.transfers.Delete(ctx, p.ID); err != nil {
			common.LogError(err, "transfer pattern delete failed, continuing", common.Fields{"id": p.ID})
			continue
		}
		stats.Transfers++
	}

	return stats, nil
}

func stale(lastUsed, now time.Time, retention time.Duration) bool {
	return now.Sub(lastUsed) > retention
}

func categoryEligibleForCleanup(p model.CategoryPattern, now time.Time, retention time.Duration) bool {
	return stale(p.LastUsed, now, retention) && !p.IsReliable()
}

func payeeEligibleForCleanup(p model.PayeePattern, now time.Time, retention time.Duration) bool {
	reliable := p.Confidence >= 0.8 && p.UseCount >= 3
	return stale(p.LastUsed, now, retention) && !reliable
}

func transferEligibleForCleanup(p model.TransferPattern, now time.Time, retention time.Duration) bool {
	// Absolute protections, regardless of the deletion branches below.
	if !stale(p.LastUsed, now, retention) {
		return false
	}
	if p.SuccessfulMatches > 3*p.RejectedMatches {
		return false
	}

	if !p.IsReliable() {
		return true
	}
	return p.RejectedMatches > 10 && p.RejectedMatches > 3*p.SuccessfulMatches
}
