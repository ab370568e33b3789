package learn

import (
	"context"
	"errors"
	"strings"

	"github.com/Veraticus/ledger-reconcile/internal/common"
	"github.com/Veraticus/ledger-reconcile/internal/model"
	"github.com/Veraticus/ledger-reconcile/internal/service"
)

// Learner applies user feedback to the pattern stores. Store failures are
// deliberately non-fatal: a lost learning update must never block the
// user-facing import flow, so failed writes are logged and swallowed and
// failed reads behave as "no pattern yet".
type Learner struct {
	categories service.CategoryPatternStore
	payees     service.PayeePatternStore
	transfers  service.TransferPatternStore
	clock      service.Clock
}

// NewLearner creates a learner over the three pattern stores.
func NewLearner(categories service.CategoryPatternStore, payees service.PayeePatternStore, transfers service.TransferPatternStore, clock service.Clock) *Learner {
	if clock == nil {
		clock = service.RealClock{}
	}
	return &Learner{
		categories: categories,
		payees:     payees,
		transfers:  transfers,
		clock:      clock,
	}
}

// ConfirmPayeeRename records an accepted rename from original to canonical.
// Renames that only change case are a no-op.
func (l *Learner) ConfirmPayeeRename(ctx context.Context, original, canonical string) {
	if strings.EqualFold(strings.TrimSpace(original), strings.TrimSpace(canonical)) {
		return
	}

	now := l.clock.Now()
	existing, err := l.payees.GetByCanonical(ctx, canonical)
	switch {
	case err == nil && existing != nil:
		updated := ApplyPayeeConfirmation(*existing, original, now)
		l.save("payee pattern", l.payees.Save(ctx, &updated))
	case err == nil || errors.Is(err, common.ErrNotFound):
		created := NewPayeePattern(original, canonical, now)
		l.save("payee pattern", l.payees.Save(ctx, &created))
	default:
		common.LogError(err, "payee pattern lookup failed, skipping learning update", common.Fields{"canonical": canonical})
	}
}

// ConfirmCategory records an accepted category assignment for a transaction.
func (l *Learner) ConfirmCategory(ctx context.Context, features model.TransactionFeatures, categoryName string) {
	if features.NormalizedPayee == "" || categoryName == "" {
		return
	}

	now := l.clock.Now()
	existing, err := l.categories.GetByPayee(ctx, features.NormalizedPayee)
	switch {
	case err == nil && existing != nil:
		updated := ApplyCategoryConfirmation(*existing, features, now)
		updated.Category = categoryName
		l.save("category pattern", l.categories.Save(ctx, &updated))
	case err == nil || errors.Is(err, common.ErrNotFound):
		created := NewCategoryPattern(features, categoryName, now)
		l.save("category pattern", l.categories.Save(ctx, &created))
	default:
		common.LogError(err, "category pattern lookup failed, skipping learning update", common.Fields{"payee": features.NormalizedPayee})
	}
}

// RejectCategory records that the user overrode a suggested category.
func (l *Learner) RejectCategory(ctx context.Context, features model.TransactionFeatures) {
	existing, err := l.categories.GetByPayee(ctx, features.NormalizedPayee)
	if err != nil || existing == nil {
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			common.LogError(err, "category pattern lookup failed, skipping rejection", common.Fields{"payee": features.NormalizedPayee})
		}
		return
	}

	updated := ApplyCategoryRejection(*existing, l.clock.Now())
	l.save("category pattern", l.categories.Save(ctx, &updated))
}

// ConfirmTransfer records an accepted transfer link between two accounts.
func (l *Learner) ConfirmTransfer(ctx context.Context, confirmation TransferConfirmation) {
	key := model.TransferPatternKey(confirmation.Outflow.AccountID, confirmation.Inflow.AccountID)
	now := l.clock.Now()

	existing, err := l.transfers.GetByKey(ctx, key)
	switch {
	case err == nil && existing != nil:
		updated := ApplyTransferConfirmation(*existing, confirmation, now)
		l.save("transfer pattern", l.transfers.Save(ctx, &updated))
	case err == nil || errors.Is(err, common.ErrNotFound):
		created := NewTransferPattern(confirmation, now)
		l.save("transfer pattern", l.transfers.Save(ctx, &created))
	default:
		common.LogError(err, "transfer pattern lookup failed, skipping learning update", common.Fields{"pair_key": key})
	}
}

// RejectTransfer records a rejected suggestion for the account pair.
func (l *Learner) RejectTransfer(ctx context.Context, outflowAccountID, inflowAccountID string) {
	key := model.TransferPatternKey(outflowAccountID, inflowAccountID)

	existing, err := l.transfers.GetByKey(ctx, key)
	if err != nil || existing == nil {
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			common.LogError(err, "transfer pattern lookup failed, skipping rejection", common.Fields{"pair_key": key})
		}
		return
	}

	updated := ApplyTransferRejection(*existing, l.clock.Now())
	l.save("transfer pattern", l.transfers.Save(ctx, &updated))
}

func (l *Learner) save(what string, err error) {
	if err != nil {
		common.LogError(err, "pattern store write failed, continuing", common.Fields{"store": what})
	}
}
