package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Veraticus/ledger-reconcile/internal/common"
	"github.com/Veraticus/ledger-reconcile/internal/model"
)

// PayeePatterns implements service.PayeePatternStore over SQLite.
type PayeePatterns struct {
	db *sql.DB
}

// PayeePatterns returns the payee pattern store.
func (s *SQLiteStorage) PayeePatterns() *PayeePatterns {
	return &PayeePatterns{db: s.db}
}

// GetByCanonical retrieves the pattern for a canonical payee name.
func (s *PayeePatterns) GetByCanonical(ctx context.Context, canonical string) (*model.PayeePattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(canonical, "canonical"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, canonical, variants, confidence, use_count, last_used, created_at
		FROM payee_patterns
		WHERE canonical = ? COLLATE NOCASE
	`, canonical)

	pattern, err := scanPayeePattern(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payee pattern %q: %w", canonical, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payee pattern: %w", err)
	}
	return pattern, nil
}

// List returns all payee patterns.
func (s *PayeePatterns) List(ctx context.Context) ([]model.PayeePattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, canonical, variants, confidence, use_count, last_used, created_at
		FROM payee_patterns
		ORDER BY use_count DESC, canonical
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payee patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.PayeePattern
	for rows.Next() {
		pattern, err := scanPayeePattern(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payee pattern: %w", err)
		}
		patterns = append(patterns, *pattern)
	}
	return patterns, rows.Err()
}

// Save inserts or updates a payee pattern keyed by canonical name.
func (s *PayeePatterns) Save(ctx context.Context, pattern *model.PayeePattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePayeePattern(pattern); err != nil {
		return err
	}

	variants, err := json.Marshal(pattern.Variants)
	if err != nil {
		return fmt.Errorf("failed to encode variants: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO payee_patterns (canonical, variants, confidence, use_count, last_used)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(canonical) DO UPDATE SET
			variants = excluded.variants,
			confidence = excluded.confidence,
			use_count = excluded.use_count,
			last_used = excluded.last_used
	`, pattern.Canonical, string(variants), pattern.Confidence, pattern.UseCount, pattern.LastUsed)
	if err != nil {
		return fmt.Errorf("failed to save payee pattern: %w", err)
	}

	if pattern.ID == 0 {
		if id, err := result.LastInsertId(); err == nil {
			pattern.ID = int(id)
		}
	}
	return nil
}

// Delete removes a payee pattern by ID.
func (s *PayeePatterns) Delete(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM payee_patterns WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete payee pattern: %w", err)
	}
	return nil
}

func scanPayeePattern(row scanner) (*model.PayeePattern, error) {
	var p model.PayeePattern
	var variants sql.NullString
	var lastUsed sql.NullTime

	err := row.Scan(&p.ID, &p.Canonical, &variants, &p.Confidence, &p.UseCount, &lastUsed, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	if variants.Valid && variants.String != "" {
		if err := json.Unmarshal([]byte(variants.String), &p.Variants); err != nil {
			return nil, fmt.Errorf("failed to decode variants: %w", err)
		}
	}
	if lastUsed.Valid {
		p.LastUsed = lastUsed.Time
	}
	return &p, nil
}
