package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledger-reconcile/internal/common"
	"github.com/Veraticus/ledger-reconcile/internal/model"
	"github.com/Veraticus/ledger-reconcile/internal/testutil"
)

var testDay = time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newTestReconciler(ledger *testutil.MemoryLedger, categories *testutil.MemoryCategoryStore, payees *testutil.MemoryPayeeStore) *Reconciler {
	if ledger == nil {
		ledger = &testutil.MemoryLedger{}
	}
	if categories == nil {
		categories = testutil.NewMemoryCategoryStore()
	}
	if payees == nil {
		payees = testutil.NewMemoryPayeeStore()
	}
	return NewReconciler(ledger, categories, payees, DefaultConfig())
}

func TestReconcileEmptyBatch(t *testing.T) {
	r := newTestReconciler(nil, nil, nil)
	_, err := r.Reconcile(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrEmptyBatch)
}

func TestReconcileFlagsDuplicates(t *testing.T) {
	ledger := &testutil.MemoryLedger{
		Transactions: []model.LedgerTransaction{
			{ID: "ledger-1", Date: testDay, Payee: "TIM HORTONS #220", Amount: -4.50, AccountID: "chk-1"},
		},
	}
	r := newTestReconciler(ledger, nil, nil)

	batch := []model.ImportedTransaction{
		{ID: "imp-1", Date: testDay, Payee: "TIM HORTONS #220", Amount: -4.50, AccountID: "chk-1"},
		{ID: "imp-2", Date: testDay, Payee: "TIM HORTONS #220", Amount: -9.00, AccountID: "chk-1"},
	}

	result, err := r.Reconcile(context.Background(), batch)
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	require.NotNil(t, result.Rows[0].Duplicate)
	assert.Equal(t, "ledger-1", result.Rows[0].Duplicate.ExistingID)
	assert.Nil(t, result.Rows[0].Category, "duplicates get no further suggestions")

	assert.Nil(t, result.Rows[1].Duplicate, "different amount is never a duplicate")
	assert.Equal(t, 1, result.Stats.Duplicates)
	assert.Equal(t, 2, result.Stats.Total)
}

func TestReconcilePairsTransfersAndSkipsTheirCategories(t *testing.T) {
	categories := testutil.NewMemoryCategoryStore()
	require.NoError(t, categories.Save(context.Background(), &model.CategoryPattern{
		PayeePattern: "transfer to savings",
		Category:     "Misc",
		Confidence:   0.9,
		UseCount:     5,
	}))
	r := newTestReconciler(nil, categories, nil)

	batch := []model.ImportedTransaction{
		{ID: "out-1", Date: testDay, Payee: "TRANSFER TO SAVINGS", Amount: -500, AccountID: "chk-1", Memo: strPtr("transfer")},
		{ID: "in-1", Date: testDay.AddDate(0, 0, 1), Payee: "TRANSFER FROM CHEQUING", Amount: 500, AccountID: "sav-1", Memo: strPtr("transfer")},
	}

	result, err := r.Reconcile(context.Background(), batch)
	require.NoError(t, err)

	require.Len(t, result.Transfers, 1)
	assert.Equal(t, "out-1", result.Transfers[0].OutflowID)
	assert.Equal(t, "in-1", result.Transfers[0].InflowID)
	assert.GreaterOrEqual(t, result.Transfers[0].Score, 0.70)

	for _, row := range result.Rows {
		assert.Nil(t, row.Category, "paired transfer legs get no category suggestion")
	}
	assert.Equal(t, 1, result.Stats.Transfers)
	assert.Zero(t, result.Stats.Categories)
}

func TestReconcileAnnotatesCategoryAndPayee(t *testing.T) {
	categories := testutil.NewMemoryCategoryStore()
	require.NoError(t, categories.Save(context.Background(), &model.CategoryPattern{
		PayeePattern: "starbucks",
		Category:     "Dining",
		Confidence:   0.8,
		UseCount:     10,
	}))
	payees := testutil.NewMemoryPayeeStore()
	require.NoError(t, payees.Save(context.Background(), &model.PayeePattern{
		Canonical:  "Starbucks",
		Variants:   []string{"STARBUCKS #4521"},
		Confidence: 0.9,
	}))
	r := newTestReconciler(nil, categories, payees)

	batch := []model.ImportedTransaction{
		{ID: "imp-1", Date: testDay, Payee: "STARBUCKS #4521", Amount: -6.45, AccountID: "chk-1"},
	}

	result, err := r.Reconcile(context.Background(), batch)
	require.NoError(t, err)

	row := result.Rows[0]
	require.NotNil(t, row.Category)
	assert.Equal(t, "Dining", row.Category.Category)
	require.NotNil(t, row.Payee)
	assert.Equal(t, "Starbucks", row.Payee.Canonical)
	assert.InDelta(t, 1.0, row.Payee.Confidence, 1e-9, "variant match is exact-tier")
}

func TestReconcileDegradesWhenStoresFail(t *testing.T) {
	categories := testutil.NewMemoryCategoryStore()
	categories.ListErr = errors.New("database locked")
	payees := testutil.NewMemoryPayeeStore()
	payees.ListErr = errors.New("database locked")
	r := newTestReconciler(nil, categories, payees)

	batch := []model.ImportedTransaction{
		{ID: "imp-1", Date: testDay, Payee: "STARBUCKS #4521", Amount: -6.45, AccountID: "chk-1"},
	}

	result, err := r.Reconcile(context.Background(), batch)
	require.NoError(t, err, "pattern store failures degrade, not abort")
	assert.Nil(t, result.Rows[0].Category)
	assert.Nil(t, result.Rows[0].Payee)
}

func TestReconcileAbortsOnLedgerFailure(t *testing.T) {
	ledger := &testutil.MemoryLedger{RangeErr: errors.New("disk I/O error")}
	r := newTestReconciler(ledger, nil, nil)

	batch := []model.ImportedTransaction{
		{ID: "imp-1", Date: testDay, Payee: "STARBUCKS", Amount: -6.45, AccountID: "chk-1"},
	}

	_, err := r.Reconcile(context.Background(), batch)
	assert.Error(t, err, "wrong duplicate verdicts are worse than no run")
}
