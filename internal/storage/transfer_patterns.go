package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Veraticus/ledger-reconcile/internal/common"
	"github.com/Veraticus/ledger-reconcile/internal/model"
)

// TransferPatterns implements service.TransferPatternStore over SQLite.
type TransferPatterns struct {
	db *sql.DB
}

// TransferPatterns returns the transfer pattern store.
func (s *SQLiteStorage) TransferPatterns() *TransferPatterns {
	return &TransferPatterns{db: s.db}
}

// GetByKey retrieves the pattern for a symmetric account pair key.
func (s *TransferPatterns) GetByKey(ctx context.Context, pairKey string) (*model.TransferPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(pairKey, "pairKey"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, account_pair_key, amount_min, amount_max, fee_estimate,
			fee_samples, hours_min, hours_max, typical_hours, hour_samples,
			common_day_of_month, day_votes, common_words, use_count,
			successful_matches, rejected_matches, last_used, created_at
		FROM transfer_patterns
		WHERE account_pair_key = ?
	`, pairKey)

	pattern, err := scanTransferPattern(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transfer pattern %q: %w", pairKey, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer pattern: %w", err)
	}
	return pattern, nil
}

// List returns all transfer patterns.
func (s *TransferPatterns) List(ctx context.Context) ([]model.TransferPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_pair_key, amount_min, amount_max, fee_estimate,
			fee_samples, hours_min, hours_max, typical_hours, hour_samples,
			common_day_of_month, day_votes, common_words, use_count,
			successful_matches, rejected_matches, last_used, created_at
		FROM transfer_patterns
		ORDER BY successful_matches DESC, account_pair_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfer patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.TransferPattern
	for rows.Next() {
		pattern, err := scanTransferPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer pattern: %w", err)
		}
		patterns = append(patterns, *pattern)
	}
	return patterns, rows.Err()
}

// Save inserts or updates a transfer pattern keyed by account pair.
func (s *TransferPatterns) Save(ctx context.Context, pattern *model.TransferPattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransferPattern(pattern); err != nil {
		return err
	}

	words, err := json.Marshal(pattern.CommonWords)
	if err != nil {
		return fmt.Errorf("failed to encode common words: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO transfer_patterns (
			account_pair_key, amount_min, amount_max, fee_estimate, fee_samples,
			hours_min, hours_max, typical_hours, hour_samples,
			common_day_of_month, day_votes, common_words, use_count,
			successful_matches, rejected_matches, last_used
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_pair_key) DO UPDATE SET
			amount_min = excluded.amount_min,
			amount_max = excluded.amount_max,
			fee_estimate = excluded.fee_estimate,
			fee_samples = excluded.fee_samples,
			hours_min = excluded.hours_min,
			hours_max = excluded.hours_max,
			typical_hours = excluded.typical_hours,
			hour_samples = excluded.hour_samples,
			common_day_of_month = excluded.common_day_of_month,
			day_votes = excluded.day_votes,
			common_words = excluded.common_words,
			use_count = excluded.use_count,
			successful_matches = excluded.successful_matches,
			rejected_matches = excluded.rejected_matches,
			last_used = excluded.last_used
	`, pattern.AccountPairKey, pattern.AmountMin, pattern.AmountMax,
		pattern.FeeEstimate, pattern.FeeSamples,
		pattern.HoursMin, pattern.HoursMax, pattern.TypicalHours, pattern.HourSamples,
		pattern.CommonDayOfMonth, pattern.DayVotes, string(words), pattern.UseCount,
		pattern.SuccessfulMatches, pattern.RejectedMatches, pattern.LastUsed)
	if err != nil {
		return fmt.Errorf("failed to save transfer pattern: %w", err)
	}

	if pattern.ID == 0 {
		if id, err := result.LastInsertId(); err == nil {
			pattern.ID = int(id)
		}
	}
	return nil
}

// Delete removes a transfer pattern by ID.
func (s *TransferPatterns) Delete(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transfer_patterns WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete transfer pattern: %w", err)
	}
	return nil
}

func scanTransferPattern(row scanner) (*model.TransferPattern, error) {
	var p model.TransferPattern
	var amountMin, amountMax, fee, hoursMin, hoursMax, typicalHours sql.NullFloat64
	var dayOfMonth sql.NullInt64
	var words sql.NullString
	var lastUsed sql.NullTime

	err := row.Scan(&p.ID, &p.AccountPairKey, &amountMin, &amountMax, &fee,
		&p.FeeSamples, &hoursMin, &hoursMax, &typicalHours, &p.HourSamples,
		&dayOfMonth, &p.DayVotes, &words, &p.UseCount,
		&p.SuccessfulMatches, &p.RejectedMatches, &lastUsed, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	if amountMin.Valid {
		p.AmountMin = &amountMin.Float64
	}
	if amountMax.Valid {
		p.AmountMax = &amountMax.Float64
	}
	if fee.Valid {
		p.FeeEstimate = &fee.Float64
	}
	if hoursMin.Valid {
		p.HoursMin = &hoursMin.Float64
	}
	if hoursMax.Valid {
		p.HoursMax = &hoursMax.Float64
	}
	if typicalHours.Valid {
		p.TypicalHours = &typicalHours.Float64
	}
	if dayOfMonth.Valid {
		day := int(dayOfMonth.Int64)
		p.CommonDayOfMonth = &day
	}
	if words.Valid && words.String != "" {
		if err := json.Unmarshal([]byte(words.String), &p.CommonWords); err != nil {
			return nil, fmt.Errorf("failed to decode common words: %w", err)
		}
	}
	if lastUsed.Valid {
		p.LastUsed = lastUsed.Time
	}
	return &p, nil
}
