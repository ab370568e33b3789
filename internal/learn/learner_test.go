package learn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledger-reconcile/internal/feature"
	"github.com/Veraticus/ledger-reconcile/internal/model"
	"github.com/Veraticus/ledger-reconcile/internal/testutil"
)

func newTestLearner() (*Learner, *testutil.MemoryCategoryStore, *testutil.MemoryPayeeStore, *testutil.MemoryTransferStore, *testutil.FixedClock) {
	categories := testutil.NewMemoryCategoryStore()
	payees := testutil.NewMemoryPayeeStore()
	transfers := testutil.NewMemoryTransferStore()
	clock := &testutil.FixedClock{Time: now}
	return NewLearner(categories, payees, transfers, clock), categories, payees, transfers, clock
}

func TestConfirmPayeeRenameCreatesThenUpdates(t *testing.T) {
	l, _, payees, _, _ := newTestLearner()
	ctx := context.Background()

	l.ConfirmPayeeRename(ctx, "AMZN MKTP US", "Amazon")

	p, err := payees.GetByCanonical(ctx, "Amazon")
	require.NoError(t, err)
	assert.Equal(t, []string{"AMZN MKTP US"}, p.Variants)
	first := p.Confidence

	l.ConfirmPayeeRename(ctx, "AMZN MKTP US", "Amazon")

	p, err = payees.GetByCanonical(ctx, "Amazon")
	require.NoError(t, err)
	assert.Equal(t, []string{"AMZN MKTP US"}, p.Variants, "variant inserted exactly once")
	assert.Greater(t, p.Confidence, first)
	assert.Equal(t, 2, p.UseCount)
}

func TestConfirmPayeeRenameCaseOnlyNoOp(t *testing.T) {
	l, _, payees, _, _ := newTestLearner()
	ctx := context.Background()

	l.ConfirmPayeeRename(ctx, "amazon", "Amazon")

	_, err := payees.GetByCanonical(ctx, "Amazon")
	assert.Error(t, err)
}

func TestConfirmPayeeRenameSwallowsWriteFailure(t *testing.T) {
	l, _, payees, _, _ := newTestLearner()
	payees.SaveErr = errors.New("disk full")

	// Must not panic or error; loss of a learning update is non-fatal.
	l.ConfirmPayeeRename(context.Background(), "AMZN MKTP US", "Amazon")
}

func TestConfirmCategoryCreatesPattern(t *testing.T) {
	l, categories, _, _, _ := newTestLearner()
	ctx := context.Background()

	f := feature.Extract(model.ImportedTransaction{Payee: "STARBUCKS #4521", Amount: -6.45, Date: now})
	l.ConfirmCategory(ctx, f, "Coffee")

	p, err := categories.GetByPayee(ctx, f.NormalizedPayee)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", p.Category)
	assert.Equal(t, 1, p.UseCount)

	l.ConfirmCategory(ctx, f, "Coffee")
	p, err = categories.GetByPayee(ctx, f.NormalizedPayee)
	require.NoError(t, err)
	assert.Equal(t, 2, p.UseCount)
}

func TestRejectCategoryWeakens(t *testing.T) {
	l, categories, _, _, _ := newTestLearner()
	ctx := context.Background()

	f := feature.Extract(model.ImportedTransaction{Payee: "STARBUCKS", Amount: -6.45, Date: now})
	l.ConfirmCategory(ctx, f, "Coffee")

	before, err := categories.GetByPayee(ctx, f.NormalizedPayee)
	require.NoError(t, err)

	l.RejectCategory(ctx, f)

	after, err := categories.GetByPayee(ctx, f.NormalizedPayee)
	require.NoError(t, err)
	assert.Less(t, after.Confidence, before.Confidence)
}

func TestConfirmTransferSymmetricKey(t *testing.T) {
	l, _, _, transfers, _ := newTestLearner()
	ctx := context.Background()

	l.ConfirmTransfer(ctx, transferPair(-500, 500, time.Hour))

	p, err := transfers.GetByKey(ctx, model.TransferPatternKey("savings", "chequing"))
	require.NoError(t, err, "key is symmetric under account swap")
	assert.Equal(t, 1, p.SuccessfulMatches)
}

func TestRejectTransferWithoutPatternIsNoOp(t *testing.T) {
	l, _, _, transfers, _ := newTestLearner()
	ctx := context.Background()

	l.RejectTransfer(ctx, "chequing", "savings")

	_, err := transfers.GetByKey(ctx, model.TransferPatternKey("chequing", "savings"))
	assert.Error(t, err)
}

func TestLearnerReadFailureDegradesSilently(t *testing.T) {
	l, _, payees, _, _ := newTestLearner()
	payees.GetErr = errors.New("database locked")

	// Lookup failure skips the update without surfacing an error.
	l.ConfirmPayeeRename(context.Background(), "AMZN", "Amazon")

	payees.GetErr = nil
	_, err := payees.GetByCanonical(context.Background(), "Amazon")
	assert.Error(t, err, "no pattern was written while reads were failing")
}

func TestLearnFromHistoryChunksAndReportsProgress(t *testing.T) {
	l, _, payees, _, _ := newTestLearner()
	ctx := context.Background()

	events := make([]RenameEvent, 120)
	for i := range events {
		events[i] = RenameEvent{Original: "AMZN MKTP US", Canonical: "Amazon"}
	}

	var reports [][2]int
	err := l.LearnFromHistory(ctx, events, func(done, total int) {
		reports = append(reports, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{50, 120}, {100, 120}, {120, 120}}, reports)

	p, err := payees.GetByCanonical(ctx, "Amazon")
	require.NoError(t, err)
	assert.Equal(t, 120, p.UseCount)
	assert.Equal(t, 1.0, p.Confidence)
}

func TestLearnFromHistoryCancellation(t *testing.T) {
	l, _, _, _, _ := newTestLearner()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := make([]RenameEvent, 10)
	err := l.LearnFromHistory(ctx, events, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLearnFromHistoryEmpty(t *testing.T) {
	l, _, _, _, _ := newTestLearner()
	assert.NoError(t, l.LearnFromHistory(context.Background(), nil, nil))
}
