// Package storage provides the SQLite persistence layer for the pattern
// stores and the read-only ledger accessor.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/ledger-reconcile/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidPattern   = errors.New("invalid pattern")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateCategoryPattern(p *model.CategoryPattern) error {
	if p == nil {
		return fmt.Errorf("%w: pattern", ErrNilParameter)
	}
	if strings.TrimSpace(p.PayeePattern) == "" {
		return fmt.Errorf("%w: payee pattern is required", ErrInvalidPattern)
	}
	if strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidPattern)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be in [0,1]", ErrInvalidPattern)
	}
	return nil
}

func validatePayeePattern(p *model.PayeePattern) error {
	if p == nil {
		return fmt.Errorf("%w: pattern", ErrNilParameter)
	}
	if strings.TrimSpace(p.Canonical) == "" {
		return fmt.Errorf("%w: canonical name is required", ErrInvalidPattern)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be in [0,1]", ErrInvalidPattern)
	}
	if len(p.Variants) > model.MaxPayeeVariants {
		return fmt.Errorf("%w: too many variants", ErrInvalidPattern)
	}
	return nil
}

func validateTransferPattern(p *model.TransferPattern) error {
	if p == nil {
		return fmt.Errorf("%w: pattern", ErrNilParameter)
	}
	if strings.TrimSpace(p.AccountPairKey) == "" {
		return fmt.Errorf("%w: account pair key is required", ErrInvalidPattern)
	}
	return nil
}
