// Package service defines the interfaces between the engine and its
// collaborators. The engine only reads the ledger; pattern stores are the
// single mutable surface and belong to the learning subsystem.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/ledger-reconcile/internal/model"
)

// LedgerReader is the caller-supplied read accessor over the durable ledger.
// The engine never writes through it.
type LedgerReader interface {
	GetTransactionByID(ctx context.Context, id string) (*model.LedgerTransaction, error)
	GetTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]model.LedgerTransaction, error)
	GetAccounts(ctx context.Context) ([]model.Account, error)
}

// CategoryPatternStore persists learned payee-signature to category records.
type CategoryPatternStore interface {
	GetByPayee(ctx context.Context, payeeSignature string) (*model.CategoryPattern, error)
	List(ctx context.Context) ([]model.CategoryPattern, error)
	Save(ctx context.Context, pattern *model.CategoryPattern) error
	Delete(ctx context.Context, id int) error
}

// PayeePatternStore persists canonical payee names and their variants.
type PayeePatternStore interface {
	GetByCanonical(ctx context.Context, canonical string) (*model.PayeePattern, error)
	List(ctx context.Context) ([]model.PayeePattern, error)
	Save(ctx context.Context, pattern *model.PayeePattern) error
	Delete(ctx context.Context, id int) error
}

// TransferPatternStore persists per-account-pair transfer behavior, keyed by
// the symmetric pair key.
type TransferPatternStore interface {
	GetByKey(ctx context.Context, pairKey string) (*model.TransferPattern, error)
	List(ctx context.Context) ([]model.TransferPattern, error)
	Save(ctx context.Context, pattern *model.TransferPattern) error
	Delete(ctx context.Context, id int) error
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }
