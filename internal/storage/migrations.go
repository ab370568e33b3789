package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/ledger-reconcile/internal/common"
)

// ExpectedSchemaVersion is the latest schema version the application expects.
const ExpectedSchemaVersion = 1

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS ledger_transactions (
					id TEXT PRIMARY KEY,
					date DATETIME NOT NULL,
					payee TEXT NOT NULL,
					memo TEXT,
					amount REAL NOT NULL,
					account_id TEXT NOT NULL,
					account_type TEXT,
					category TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_ledger_transactions_date ON ledger_transactions(date)`,
				`CREATE INDEX idx_ledger_transactions_account ON ledger_transactions(account_id)`,

				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT NOT NULL DEFAULT 'checking'
				)`,

				`CREATE TABLE IF NOT EXISTS category_patterns (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					payee_pattern TEXT UNIQUE NOT NULL,
					category TEXT NOT NULL,
					confidence REAL NOT NULL DEFAULT 0,
					amount_min REAL,
					amount_max REAL,
					typical_amount REAL,
					common_day INTEGER,
					memo_keywords TEXT,
					use_count INTEGER NOT NULL DEFAULT 0,
					last_used DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_category_patterns_payee ON category_patterns(payee_pattern)`,

				`CREATE TABLE IF NOT EXISTS payee_patterns (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					canonical TEXT UNIQUE NOT NULL,
					variants TEXT,
					confidence REAL NOT NULL DEFAULT 0,
					use_count INTEGER NOT NULL DEFAULT 0,
					last_used DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_payee_patterns_canonical ON payee_patterns(canonical)`,

				`CREATE TABLE IF NOT EXISTS transfer_patterns (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					account_pair_key TEXT UNIQUE NOT NULL,
					amount_min REAL,
					amount_max REAL,
					fee_estimate REAL,
					fee_samples INTEGER NOT NULL DEFAULT 0,
					hours_min REAL,
					hours_max REAL,
					typical_hours REAL,
					hour_samples INTEGER NOT NULL DEFAULT 0,
					common_day_of_month INTEGER,
					day_votes INTEGER NOT NULL DEFAULT 0,
					common_words TEXT,
					use_count INTEGER NOT NULL DEFAULT 0,
					successful_matches INTEGER NOT NULL DEFAULT 0,
					rejected_matches INTEGER NOT NULL DEFAULT 0,
					last_used DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE UNIQUE INDEX idx_transfer_patterns_key ON transfer_patterns(account_pair_key)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		common.LogInfo("applied schema migration", common.Fields{
			"version":     m.Version,
			"description": m.Description,
		})
	}

	return nil
}
