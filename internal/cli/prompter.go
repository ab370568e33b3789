package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/ledger-reconcile/internal/engine"
	"github.com/Veraticus/ledger-reconcile/internal/model"
)

// Rename records one accepted payee rename.
type Rename struct {
	Raw       string
	Canonical string
}

// CategoryDecision records the user's verdict on one category suggestion.
type CategoryDecision struct {
	Transaction model.ImportedTransaction
	Category    string
	Suggested   string
	Accepted    bool
}

// Outcome collects everything the review session decided. The caller feeds
// the decisions to the learner and records Accepted in the ledger.
type Outcome struct {
	Accepted           []model.LedgerTransaction
	Categories         []CategoryDecision
	Renames            []Rename
	ConfirmedTransfers []model.TransferSuggestion
	RejectedTransfers  []model.TransferSuggestion
	SkippedDuplicates  int
}

// Prompter walks the user through a reconciliation result.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewPrompter creates a prompter. Nil reader/writer default to stdin/stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

// Review walks every row and transfer suggestion in the result.
func (p *Prompter) Review(ctx context.Context, result *engine.Result) (*Outcome, error) {
	outcome := &Outcome{}

	transferRows := make(map[string]struct{})
	for _, suggestion := range result.Transfers {
		confirmed, err := p.reviewTransfer(ctx, result, suggestion)
		if err != nil {
			return nil, err
		}
		if confirmed {
			outcome.ConfirmedTransfers = append(outcome.ConfirmedTransfers, suggestion)
			transferRows[suggestion.OutflowID] = struct{}{}
			transferRows[suggestion.InflowID] = struct{}{}
		} else {
			outcome.RejectedTransfers = append(outcome.RejectedTransfers, suggestion)
		}
	}

	for _, row := range result.Rows {
		if row.Duplicate != nil {
			outcome.SkippedDuplicates++
			if err := p.say("%s\n", SubtleStyle.Render(fmt.Sprintf("skipping %s (%s)", row.Transaction.Payee, row.Duplicate.Reason))); err != nil {
				return nil, err
			}
			continue
		}

		decision, err := p.reviewRow(ctx, row, transferRows)
		if err != nil {
			return nil, err
		}
		outcome.Accepted = append(outcome.Accepted, decision.ledger)
		if decision.category != nil {
			outcome.Categories = append(outcome.Categories, *decision.category)
		}
		if decision.rename != nil {
			outcome.Renames = append(outcome.Renames, *decision.rename)
		}
	}

	return outcome, nil
}

type rowDecision struct {
	ledger   model.LedgerTransaction
	category *CategoryDecision
	rename   *Rename
}

func (p *Prompter) reviewRow(ctx context.Context, row engine.RowResult, transferRows map[string]struct{}) (rowDecision, error) {
	txn := row.Transaction
	if err := p.say("%s\n", RenderBox("Transaction", formatTransaction(txn))); err != nil {
		return rowDecision{}, err
	}

	ledger := model.LedgerTransaction{
		ID:          txn.ID,
		Date:        txn.Date,
		Payee:       txn.Payee,
		Memo:        txn.Memo,
		Amount:      txn.Amount,
		AccountID:   txn.AccountID,
		AccountType: txn.AccountType,
	}
	decision := rowDecision{ledger: ledger}

	if row.Payee != nil && row.Payee.Canonical != txn.Payee {
		accept, err := p.confirm(ctx, fmt.Sprintf("Rename payee to %s?", SuccessStyle.Render(row.Payee.Canonical)))
		if err != nil {
			return rowDecision{}, err
		}
		if accept {
			decision.ledger.Payee = row.Payee.Canonical
			decision.rename = &Rename{Raw: txn.Payee, Canonical: row.Payee.Canonical}
		}
	}

	if _, isTransfer := transferRows[txn.ID]; isTransfer {
		return decision, nil
	}

	category, err := p.reviewCategory(ctx, txn, row.Category)
	if err != nil {
		return rowDecision{}, err
	}
	if category != nil {
		decision.category = category
		decision.ledger.Category = category.Category
	}
	return decision, nil
}

func (p *Prompter) reviewCategory(ctx context.Context, txn model.ImportedTransaction, suggestion *model.CategorySuggestion) (*CategoryDecision, error) {
	if suggestion != nil {
		if err := p.say("  [A] Accept suggestion: %s (score %.2f)\n", SuccessStyle.Render(suggestion.Category), suggestion.Score); err != nil {
			return nil, err
		}
	}
	if err := p.say("  [C] Enter custom category\n  [S] Skip categorization\n\n"); err != nil {
		return nil, err
	}

	choices := []string{"c", "s"}
	if suggestion != nil {
		choices = append(choices, "a")
	}
	choice, err := p.promptChoice(ctx, "Choice", choices)
	if err != nil {
		return nil, err
	}

	switch choice {
	case "a":
		return &CategoryDecision{
			Transaction: txn,
			Category:    suggestion.Category,
			Suggested:   suggestion.Category,
			Accepted:    true,
		}, nil
	case "c":
		custom, err := p.promptLine(ctx, "Category")
		if err != nil {
			return nil, err
		}
		if custom == "" {
			return nil, nil
		}
		decision := &CategoryDecision{Transaction: txn, Category: custom, Accepted: true}
		if suggestion != nil && suggestion.Category != custom {
			// Choosing a different category is a rejection of the suggestion.
			decision.Suggested = suggestion.Category
			decision.Accepted = false
		}
		return decision, nil
	default:
		return nil, nil
	}
}

func (p *Prompter) reviewTransfer(ctx context.Context, result *engine.Result, suggestion model.TransferSuggestion) (bool, error) {
	outflow := findRow(result, suggestion.OutflowID)
	inflow := findRow(result, suggestion.InflowID)
	if outflow == nil || inflow == nil {
		return false, nil
	}

	content := fmt.Sprintf("%s\n%s\n\nscore %.2f, %d day(s) apart",
		formatTransaction(outflow.Transaction),
		formatTransaction(inflow.Transaction),
		suggestion.Score, suggestion.DaysApart)
	if err := p.say("%s\n", RenderBox("Possible Transfer", content)); err != nil {
		return false, err
	}
	return p.confirm(ctx, "Link these as a transfer?")
}

func (p *Prompter) confirm(ctx context.Context, question string) (bool, error) {
	choice, err := p.promptChoice(ctx, question+" [y/n]", []string{"y", "n"})
	if err != nil {
		return false, err
	}
	return choice == "y", nil
}

func (p *Prompter) promptChoice(ctx context.Context, prompt string, valid []string) (string, error) {
	for {
		answer, err := p.promptLine(ctx, prompt)
		if err != nil {
			return "", err
		}
		answer = strings.ToLower(answer)
		for _, v := range valid {
			if answer == v {
				return answer, nil
			}
		}
		if err := p.say("%s\n", WarningStyle.Render("Please enter one of: "+strings.Join(valid, ", "))); err != nil {
			return "", err
		}
	}
}

func (p *Prompter) promptLine(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if err := p.say("%s", FormatPrompt(prompt)); err != nil {
		return "", err
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) say(format string, args ...any) error {
	if _, err := fmt.Fprintf(p.writer, format, args...); err != nil {
		return fmt.Errorf("failed to write prompt: %w", err)
	}
	return nil
}

func findRow(result *engine.Result, id string) *engine.RowResult {
	for i := range result.Rows {
		if result.Rows[i].Transaction.ID == id {
			return &result.Rows[i]
		}
	}
	return nil
}

func formatTransaction(txn model.ImportedTransaction) string {
	memo := ""
	if txn.Memo != nil {
		memo = "  " + SubtleStyle.Render(*txn.Memo)
	}
	return fmt.Sprintf("%s  %s  %s%s",
		txn.Date.Format("2006-01-02"),
		fmt.Sprintf("%10.2f", txn.Amount),
		txn.Payee,
		memo)
}
