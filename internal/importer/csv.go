// Package importer stages bank CSV exports as imported transactions ready
// for reconciliation.
package importer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/ledger-reconcile/internal/common"
	"github.com/Veraticus/ledger-reconcile/internal/model"
)

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"Jan 2, 2006",
}

// csvRow is the raw shape of one export line. Debit and Credit columns are
// mutually exclusive alternatives to the signed Amount column.
type csvRow struct {
	Date        string `csv:"Date"`
	Payee       string `csv:"Payee"`
	Memo        string `csv:"Memo"`
	Amount      string `csv:"Amount"`
	Debit       string `csv:"Debit"`
	Credit      string `csv:"Credit"`
	AccountID   string `csv:"Account"`
	AccountType string `csv:"Account Type"`
}

// CSVImporter converts bank CSV exports to imported transactions.
type CSVImporter struct {
	accountID string
}

// NewCSVImporter creates an importer. accountID is the fallback for rows
// whose export omits the Account column.
func NewCSVImporter(accountID string) *CSVImporter {
	return &CSVImporter{accountID: accountID}
}

// ImportFile reads and stages a CSV file.
func (i *CSVImporter) ImportFile(path string) ([]model.ImportedTransaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	txns, err := i.Import(file)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", path, err)
	}
	return txns, nil
}

// Import stages every row from the reader. Rows that cannot be parsed fail
// the whole import; a partially staged batch would silently drop money.
func (i *CSVImporter) Import(r io.Reader) ([]model.ImportedTransaction, error) {
	var rows []csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, common.ErrNoTransactions
	}

	txns := make([]model.ImportedTransaction, 0, len(rows))
	for n, row := range rows {
		txn, err := i.convert(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		txns = append(txns, txn)
	}

	common.LogInfo("staged CSV import", common.Fields{"transactions": len(txns)})
	return txns, nil
}

func (i *CSVImporter) convert(row csvRow) (model.ImportedTransaction, error) {
	date, err := parseDate(row.Date)
	if err != nil {
		return model.ImportedTransaction{}, err
	}

	amount, err := parseAmount(row)
	if err != nil {
		return model.ImportedTransaction{}, err
	}

	payee := strings.TrimSpace(row.Payee)
	if payee == "" {
		return model.ImportedTransaction{}, fmt.Errorf("missing payee")
	}

	accountID := strings.TrimSpace(row.AccountID)
	if accountID == "" {
		accountID = i.accountID
	}
	if accountID == "" {
		return model.ImportedTransaction{}, fmt.Errorf("missing account")
	}

	txn := model.ImportedTransaction{
		ID:        uuid.New().String(),
		Date:      date,
		Payee:     payee,
		Amount:    amount,
		AccountID: accountID,
	}
	if memo := strings.TrimSpace(row.Memo); memo != "" {
		txn.Memo = &memo
	}
	if accountType, ok := parseAccountType(row.AccountType); ok {
		txn.AccountType = &accountType
	}
	return txn, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, raw); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// parseAmount resolves the signed amount. Decimal arithmetic keeps cent
// values exact; they only become float64 at the model boundary.
func parseAmount(row csvRow) (float64, error) {
	signed := strings.TrimSpace(row.Amount)
	debit := strings.TrimSpace(row.Debit)
	credit := strings.TrimSpace(row.Credit)

	switch {
	case signed != "":
		amount, err := parseDecimal(signed)
		if err != nil {
			return 0, err
		}
		return amount.InexactFloat64(), nil
	case debit != "":
		amount, err := parseDecimal(debit)
		if err != nil {
			return 0, err
		}
		return amount.Abs().Neg().InexactFloat64(), nil
	case credit != "":
		amount, err := parseDecimal(credit)
		if err != nil {
			return 0, err
		}
		return amount.Abs().InexactFloat64(), nil
	default:
		return 0, fmt.Errorf("missing amount")
	}
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", "(", "-", ")", "").Replace(raw)
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return amount, nil
}

func parseAccountType(raw string) (model.AccountType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "checking", "chequing":
		return model.AccountChecking, true
	case "savings":
		return model.AccountSavings, true
	case "credit", "credit card":
		return model.AccountCredit, true
	case "investment", "brokerage":
		return model.AccountInvestment, true
	default:
		return "", false
	}
}
