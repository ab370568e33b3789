// Package model defines the core data structures for the reconciliation engine.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// AccountType describes the kind of account a transaction belongs to.
type AccountType string

const (
	// AccountChecking is a chequing/current account.
	AccountChecking AccountType = "checking"
	// AccountSavings is a savings account.
	AccountSavings AccountType = "savings"
	// AccountCredit is a credit card account.
	AccountCredit AccountType = "credit"
	// AccountInvestment is an investment account.
	AccountInvestment AccountType = "investment"

	// DefaultAccountType is applied when the source provides no account type.
	DefaultAccountType = AccountChecking
)

// ImportedTransaction is one row produced by import staging, not yet in the ledger.
type ImportedTransaction struct {
	Date        time.Time    `json:"date"`
	Memo        *string      `json:"memo,omitempty"`
	AccountType *AccountType `json:"account_type,omitempty"`
	ID          string       `json:"id"`
	Payee       string       `json:"payee"`
	AccountID   string       `json:"account_id"`
	Amount      float64      `json:"amount"`
}

// LedgerTransaction is a transaction already recorded in the user's ledger.
type LedgerTransaction struct {
	Date        time.Time    `json:"date"`
	Memo        *string      `json:"memo,omitempty"`
	AccountType *AccountType `json:"account_type,omitempty"`
	ID          string       `json:"id"`
	Payee       string       `json:"payee"`
	AccountID   string       `json:"account_id"`
	Category    string       `json:"category,omitempty"`
	Amount      float64      `json:"amount"`
}

// Account represents a ledger account.
type Account struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Type AccountType `json:"type"`
}

// Category represents a spending category.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenerateHash creates a stable identity hash for exact-duplicate short-circuiting.
func (t *ImportedTransaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Payee,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// GenerateHash creates a stable identity hash for exact-duplicate short-circuiting.
func (t *LedgerTransaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Payee,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
