package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/ledger-reconcile/internal/common"
	"github.com/Veraticus/ledger-reconcile/internal/model"
)

// Ledger implements service.LedgerReader over SQLite. Writes happen only
// through SaveTransactions, which the import path uses after review.
type Ledger struct {
	db *sql.DB
}

// Ledger returns the ledger accessor.
func (s *SQLiteStorage) Ledger() *Ledger {
	return &Ledger{db: s.db}
}

// GetTransactionByID retrieves a single ledger transaction.
func (l *Ledger) GetTransactionByID(ctx context.Context, id string) (*model.LedgerTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := l.db.QueryRowContext(ctx, `
		SELECT id, date, payee, memo, amount, account_id, account_type, category
		FROM ledger_transactions
		WHERE id = ?
	`, id)

	txn, err := scanLedgerTransaction(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %q: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// GetTransactionsByDateRange returns ledger transactions with dates in
// [start, end], ordered by date.
func (l *Ledger) GetTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]model.LedgerTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, date, payee, memo, amount, account_id, account_type, category
		FROM ledger_transactions
		WHERE date >= ? AND date <= ?
		ORDER BY date, id
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.LedgerTransaction
	for rows.Next() {
		txn, err := scanLedgerTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *txn)
	}
	return txns, rows.Err()
}

// GetAccounts returns all known accounts ordered by name.
func (l *Ledger) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := l.db.QueryContext(ctx, `SELECT id, name, type FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// SaveTransactions records reviewed imports in the ledger inside one
// transaction. Rows whose ID already exists are left untouched.
func (l *Ledger) SaveTransactions(ctx context.Context, txns []model.LedgerTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(txns) == 0 {
		return common.ErrEmptyBatch
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ledger_transactions (id, date, payee, memo, amount, account_id, account_type, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range txns {
		t := &txns[i]
		var accountType any
		if t.AccountType != nil {
			accountType = string(*t.AccountType)
		}
		if _, err := stmt.ExecContext(ctx, t.ID, t.Date, t.Payee, t.Memo,
			t.Amount, t.AccountID, accountType, nullableString(t.Category)); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// SaveAccount upserts an account record.
func (l *Ledger) SaveAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if err := validateString(account.ID, "account.ID"); err != nil {
		return err
	}

	if _, err := l.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, type) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, type = excluded.type
	`, account.ID, account.Name, string(account.Type)); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func scanLedgerTransaction(row scanner) (*model.LedgerTransaction, error) {
	var t model.LedgerTransaction
	var memo, accountType, category sql.NullString

	err := row.Scan(&t.ID, &t.Date, &t.Payee, &memo, &t.Amount,
		&t.AccountID, &accountType, &category)
	if err != nil {
		return nil, err
	}

	if memo.Valid {
		t.Memo = &memo.String
	}
	if accountType.Valid {
		at := model.AccountType(accountType.String)
		t.AccountType = &at
	}
	if category.Valid {
		t.Category = category.String
	}
	return &t, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
