package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/ledger-reconcile/internal/common"
	"github.com/Veraticus/ledger-reconcile/internal/model"
)

// CategoryPatterns implements service.CategoryPatternStore over SQLite.
type CategoryPatterns struct {
	db *sql.DB
}

// CategoryPatterns returns the category pattern store.
func (s *SQLiteStorage) CategoryPatterns() *CategoryPatterns {
	return &CategoryPatterns{db: s.db}
}

// GetByPayee retrieves the category pattern for a normalized payee signature.
func (s *CategoryPatterns) GetByPayee(ctx context.Context, payeeSignature string) (*model.CategoryPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(payeeSignature, "payeeSignature"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, payee_pattern, category, confidence, amount_min, amount_max,
			typical_amount, common_day, memo_keywords, use_count, last_used,
			created_at, updated_at
		FROM category_patterns
		WHERE payee_pattern = ?
	`, payeeSignature)

	pattern, err := scanCategoryPattern(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category pattern %q: %w", payeeSignature, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category pattern: %w", err)
	}
	return pattern, nil
}

// List returns all category patterns.
func (s *CategoryPatterns) List(ctx context.Context) ([]model.CategoryPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payee_pattern, category, confidence, amount_min, amount_max,
			typical_amount, common_day, memo_keywords, use_count, last_used,
			created_at, updated_at
		FROM category_patterns
		ORDER BY confidence DESC, use_count DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list category patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.CategoryPattern
	for rows.Next() {
		pattern, err := scanCategoryPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category pattern: %w", err)
		}
		patterns = append(patterns, *pattern)
	}
	return patterns, rows.Err()
}

// Save inserts or updates a category pattern keyed by payee signature.
func (s *CategoryPatterns) Save(ctx context.Context, pattern *model.CategoryPattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategoryPattern(pattern); err != nil {
		return err
	}

	keywords, err := json.Marshal(pattern.MemoKeywords)
	if err != nil {
		return fmt.Errorf("failed to encode memo keywords: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO category_patterns (
			payee_pattern, category, confidence, amount_min, amount_max,
			typical_amount, common_day, memo_keywords, use_count, last_used, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(payee_pattern) DO UPDATE SET
			category = excluded.category,
			confidence = excluded.confidence,
			amount_min = excluded.amount_min,
			amount_max = excluded.amount_max,
			typical_amount = excluded.typical_amount,
			common_day = excluded.common_day,
			memo_keywords = excluded.memo_keywords,
			use_count = excluded.use_count,
			last_used = excluded.last_used,
			updated_at = CURRENT_TIMESTAMP
	`, pattern.PayeePattern, pattern.Category, pattern.Confidence,
		pattern.AmountMin, pattern.AmountMax, pattern.TypicalAmount,
		weekdayToNull(pattern.CommonDay), string(keywords),
		pattern.UseCount, pattern.LastUsed)
	if err != nil {
		return fmt.Errorf("failed to save category pattern: %w", err)
	}

	if pattern.ID == 0 {
		if id, err := result.LastInsertId(); err == nil {
			pattern.ID = int(id)
		}
	}
	return nil
}

// Delete removes a category pattern by ID.
func (s *CategoryPatterns) Delete(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM category_patterns WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete category pattern: %w", err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCategoryPattern(row scanner) (*model.CategoryPattern, error) {
	var p model.CategoryPattern
	var amountMin, amountMax, typical sql.NullFloat64
	var commonDay sql.NullInt64
	var keywords sql.NullString
	var lastUsed sql.NullTime

	err := row.Scan(&p.ID, &p.PayeePattern, &p.Category, &p.Confidence,
		&amountMin, &amountMax, &typical, &commonDay, &keywords,
		&p.UseCount, &lastUsed, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if amountMin.Valid {
		p.AmountMin = &amountMin.Float64
	}
	if amountMax.Valid {
		p.AmountMax = &amountMax.Float64
	}
	if typical.Valid {
		p.TypicalAmount = &typical.Float64
	}
	if commonDay.Valid {
		day := time.Weekday(commonDay.Int64)
		p.CommonDay = &day
	}
	if keywords.Valid && keywords.String != "" {
		if err := json.Unmarshal([]byte(keywords.String), &p.MemoKeywords); err != nil {
			return nil, fmt.Errorf("failed to decode memo keywords: %w", err)
		}
	}
	if lastUsed.Valid {
		p.LastUsed = lastUsed.Time
	}
	return &p, nil
}

func weekdayToNull(d *time.Weekday) any {
	if d == nil {
		return nil
	}
	return int(*d)
}
