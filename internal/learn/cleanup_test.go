package learn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledger-reconcile/internal/model"
)

func TestCleanupDeletesStaleUnreliablePatterns(t *testing.T) {
	l, categories, payees, transfers, clock := newTestLearner()
	ctx := context.Background()

	staleTime := clock.Now().Add(-100 * 24 * time.Hour)

	require.NoError(t, categories.Save(ctx, &model.CategoryPattern{
		PayeePattern: "defunct shop", Category: "Misc", Confidence: 0.2, UseCount: 1, LastUsed: staleTime,
	}))
	require.NoError(t, payees.Save(ctx, &model.PayeePattern{
		Canonical: "Old Merchant", Confidence: 0.3, UseCount: 1, LastUsed: staleTime,
	}))
	require.NoError(t, transfers.Save(ctx, &model.TransferPattern{
		AccountPairKey: "a-b", SuccessfulMatches: 1, RejectedMatches: 4, LastUsed: staleTime,
	}))

	stats, err := l.Cleanup(ctx, DefaultCleanupConfig())
	require.NoError(t, err)
	assert.Equal(t, CleanupStats{Categories: 1, Payees: 1, Transfers: 1}, stats)
}

func TestCleanupKeepsRecentlyUsedPatterns(t *testing.T) {
	l, categories, _, _, clock := newTestLearner()
	ctx := context.Background()

	require.NoError(t, categories.Save(ctx, &model.CategoryPattern{
		PayeePattern: "weak but fresh", Category: "Misc", Confidence: 0.1,
		LastUsed: clock.Now().Add(-24 * time.Hour),
	}))

	stats, err := l.Cleanup(ctx, DefaultCleanupConfig())
	require.NoError(t, err)
	assert.Zero(t, stats.Categories, "patterns inside the retention window are never deleted")
}

func TestCleanupKeepsReliablePatterns(t *testing.T) {
	l, categories, _, _, clock := newTestLearner()
	ctx := context.Background()

	require.NoError(t, categories.Save(ctx, &model.CategoryPattern{
		PayeePattern: "stale but reliable", Category: "Misc", Confidence: 0.95, UseCount: 12,
		LastUsed: clock.Now().Add(-200 * 24 * time.Hour),
	}))

	stats, err := l.Cleanup(ctx, DefaultCleanupConfig())
	require.NoError(t, err)
	assert.Zero(t, stats.Categories)
}

func TestCleanupProtectsSuccessfulTransferPatterns(t *testing.T) {
	l, _, _, transfers, clock := newTestLearner()
	ctx := context.Background()

	// Stale and below the reliability confidence bar, but successes exceed
	// three times the rejections, which is an absolute protection.
	require.NoError(t, transfers.Save(ctx, &model.TransferPattern{
		AccountPairKey: "a-b", SuccessfulMatches: 10, RejectedMatches: 3,
		LastUsed: clock.Now().Add(-200 * 24 * time.Hour),
	}))

	stats, err := l.Cleanup(ctx, DefaultCleanupConfig())
	require.NoError(t, err)
	assert.Zero(t, stats.Transfers)
}

func TestCleanupRejectionHeavyTransferPattern(t *testing.T) {
	l, _, _, transfers, clock := newTestLearner()
	ctx := context.Background()

	require.NoError(t, transfers.Save(ctx, &model.TransferPattern{
		AccountPairKey: "a-b", SuccessfulMatches: 3, RejectedMatches: 12,
		LastUsed: clock.Now().Add(-100 * 24 * time.Hour),
	}))

	stats, err := l.Cleanup(ctx, DefaultCleanupConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Transfers)
}

func TestCleanupListFailureSurfaces(t *testing.T) {
	l, categories, _, _, _ := newTestLearner()
	categories.ListErr = errors.New("database locked")

	_, err := l.Cleanup(context.Background(), DefaultCleanupConfig())
	assert.Error(t, err)
}
