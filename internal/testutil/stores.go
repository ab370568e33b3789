// Package testutil provides in-memory fakes for the engine's collaborators.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/ledger-reconcile/internal/common"
	"github.com/Veraticus/ledger-reconcile/internal/model"
	"github.com/Veraticus/ledger-reconcile/internal/normalize"
)

// FixedClock returns a preset, advanceable time.
type FixedClock struct {
	Time time.Time
}

// Now returns the preset time.
func (c *FixedClock) Now() time.Time { return c.Time }

// Advance moves the clock forward.
func (c *FixedClock) Advance(d time.Duration) { c.Time = c.Time.Add(d) }

// MemoryCategoryStore is an in-memory CategoryPatternStore with optional
// injected failures.
type MemoryCategoryStore struct {
	GetErr    error
	ListErr   error
	SaveErr   error
	DeleteErr error

	patterns map[int]model.CategoryPattern
	nextID   int
	mu       sync.Mutex
}

// NewMemoryCategoryStore creates an empty store.
func NewMemoryCategoryStore() *MemoryCategoryStore {
	return &MemoryCategoryStore{patterns: make(map[int]model.CategoryPattern), nextID: 1}
}

// GetByPayee looks up a pattern by normalized payee signature.
func (s *MemoryCategoryStore) GetByPayee(_ context.Context, payeeSignature string) (*model.CategoryPattern, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.patterns {
		if normalize.Payee(p.PayeePattern) == normalize.Payee(payeeSignature) {
			copied := p
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

// List returns all patterns.
func (s *MemoryCategoryStore) List(_ context.Context) ([]model.CategoryPattern, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CategoryPattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		out = append(out, p)
	}
	return out, nil
}

// Save inserts or updates a pattern.
func (s *MemoryCategoryStore) Save(_ context.Context, pattern *model.CategoryPattern) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if pattern.ID == 0 {
		pattern.ID = s.nextID
		s.nextID++
	}
	s.patterns[pattern.ID] = *pattern
	return nil
}

// Delete removes a pattern by ID.
func (s *MemoryCategoryStore) Delete(_ context.Context, id int) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.patterns, id)
	return nil
}

// MemoryPayeeStore is an in-memory PayeePatternStore.
type MemoryPayeeStore struct {
	GetErr    error
	ListErr   error
	SaveErr   error
	DeleteErr error

	patterns map[int]model.PayeePattern
	nextID   int
	mu       sync.Mutex
}

// NewMemoryPayeeStore creates an empty store.
func NewMemoryPayeeStore() *MemoryPayeeStore {
	return &MemoryPayeeStore{patterns: make(map[int]model.PayeePattern), nextID: 1}
}

// GetByCanonical looks up a pattern by canonical name.
func (s *MemoryPayeeStore) GetByCanonical(_ context.Context, canonical string) (*model.PayeePattern, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.patterns {
		if normalize.Payee(p.Canonical) == normalize.Payee(canonical) {
			copied := p
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

// List returns all patterns.
func (s *MemoryPayeeStore) List(_ context.Context) ([]model.PayeePattern, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PayeePattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		out = append(out, p)
	}
	return out, nil
}

// Save inserts or updates a pattern.
func (s *MemoryPayeeStore) Save(_ context.Context, pattern *model.PayeePattern) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if pattern.ID == 0 {
		pattern.ID = s.nextID
		s.nextID++
	}
	s.patterns[pattern.ID] = *pattern
	return nil
}

// Delete removes a pattern by ID.
func (s *MemoryPayeeStore) Delete(_ context.Context, id int) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.patterns, id)
	return nil
}

// MemoryTransferStore is an in-memory TransferPatternStore.
type MemoryTransferStore struct {
	GetErr    error
	ListErr   error
	SaveErr   error
	DeleteErr error

	patterns map[int]model.TransferPattern
	nextID   int
	mu       sync.Mutex
}

// NewMemoryTransferStore creates an empty store.
func NewMemoryTransferStore() *MemoryTransferStore {
	return &MemoryTransferStore{patterns: make(map[int]model.TransferPattern), nextID: 1}
}

// GetByKey looks up a pattern by symmetric account-pair key.
func (s *MemoryTransferStore) GetByKey(_ context.Context, pairKey string) (*model.TransferPattern, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.patterns {
		if p.AccountPairKey == pairKey {
			copied := p
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

// List returns all patterns.
func (s *MemoryTransferStore) List(_ context.Context) ([]model.TransferPattern, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.TransferPattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		out = append(out, p)
	}
	return out, nil
}

// Save inserts or updates a pattern.
func (s *MemoryTransferStore) Save(_ context.Context, pattern *model.TransferPattern) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if pattern.ID == 0 {
		pattern.ID = s.nextID
		s.nextID++
	}
	s.patterns[pattern.ID] = *pattern
	return nil
}

// Delete removes a pattern by ID.
func (s *MemoryTransferStore) Delete(_ context.Context, id int) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.patterns, id)
	return nil
}

// MemoryLedger is an in-memory LedgerReader.
type MemoryLedger struct {
	GetErr   error
	RangeErr error

	Transactions []model.LedgerTransaction
	Accounts     []model.Account
}

// GetTransactionByID returns the transaction with the given ID.
func (l *MemoryLedger) GetTransactionByID(_ context.Context, id string) (*model.LedgerTransaction, error) {
	if l.GetErr != nil {
		return nil, l.GetErr
	}
	for _, txn := range l.Transactions {
		if txn.ID == id {
			copied := txn
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

// GetTransactionsByDateRange returns transactions within [start, end].
func (l *MemoryLedger) GetTransactionsByDateRange(_ context.Context, start, end time.Time) ([]model.LedgerTransaction, error) {
	if l.RangeErr != nil {
		return nil, l.RangeErr
	}
	var out []model.LedgerTransaction
	for _, txn := range l.Transactions {
		if !txn.Date.Before(start) && !txn.Date.After(end) {
			out = append(out, txn)
		}
	}
	return out, nil
}

// GetAccounts returns all accounts.
func (l *MemoryLedger) GetAccounts(_ context.Context) ([]model.Account, error) {
	return l.Accounts, nil
}
