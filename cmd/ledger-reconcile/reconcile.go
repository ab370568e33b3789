package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger-reconcile/internal/cli"
	"github.com/Veraticus/ledger-reconcile/internal/common"
	"github.com/Veraticus/ledger-reconcile/internal/engine"
	"github.com/Veraticus/ledger-reconcile/internal/feature"
	"github.com/Veraticus/ledger-reconcile/internal/importer"
	"github.com/Veraticus/ledger-reconcile/internal/learn"
	"github.com/Veraticus/ledger-reconcile/internal/model"
	"github.com/Veraticus/ledger-reconcile/internal/storage"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile <csv-file>",
		Short: "Import a bank CSV export and review it interactively",
		Long: `Import a bank CSV export, filter duplicates against the ledger, pair up
transfers, and review category and payee suggestions. Confirmed decisions
are recorded in the ledger and fed back into the pattern stores.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, cleanup, err := getStorage(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			account, _ := cmd.Flags().GetString("account")
			batch, err := importer.NewCSVImporter(account).ImportFile(args[0])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Could not import %s", args[0]), err)
			}

			reconciler := engine.NewReconciler(store.Ledger(), store.CategoryPatterns(), store.PayeePatterns(), engine.DefaultConfig())
			result, err := reconciler.Reconcile(ctx, batch)
			if err != nil {
				return fmt.Errorf("reconciliation failed: %w", err)
			}

			fmt.Println(cli.FormatPrompt(fmt.Sprintf("%d transactions: %d duplicates, %d possible transfers",
				result.Stats.Total, result.Stats.Duplicates, result.Stats.Transfers)))

			outcome, err := cli.NewPrompter(os.Stdin, os.Stdout).Review(ctx, result)
			if err != nil {
				return err
			}

			applyLearning(ctx, store, result, outcome)

			if len(outcome.Accepted) > 0 {
				if err := store.Ledger().SaveTransactions(ctx, outcome.Accepted); err != nil {
					return common.NewUserError("Could not record the reviewed transactions", err)
				}
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded %d transactions (%d duplicates skipped)",
				len(outcome.Accepted), outcome.SkippedDuplicates)))
			return nil
		},
	}

	cmd.Flags().String("account", "", "fallback account ID for rows without an Account column")
	return cmd
}

// applyLearning feeds every review decision to the learner. Learning updates
// are best-effort: the learner logs and swallows store failures.
func applyLearning(ctx context.Context, store *storage.SQLiteStorage, result *engine.Result, outcome *cli.Outcome) {
	learner := learn.NewLearner(store.CategoryPatterns(), store.PayeePatterns(), store.TransferPatterns(), nil)

	for _, decision := range outcome.Categories {
		features := feature.Extract(decision.Transaction)
		if !decision.Accepted && decision.Suggested != "" {
			learner.RejectCategory(ctx, features)
		}
		learner.ConfirmCategory(ctx, features, decision.Category)
	}

	for _, rename := range outcome.Renames {
		learner.ConfirmPayeeRename(ctx, rename.Raw, rename.Canonical)
	}

	for _, suggestion := range outcome.ConfirmedTransfers {
		outflow, okOut := findTransaction(result, suggestion.OutflowID)
		inflow, okIn := findTransaction(result, suggestion.InflowID)
		if !okOut || !okIn {
			continue
		}
		learner.ConfirmTransfer(ctx, learn.TransferConfirmation{Outflow: outflow, Inflow: inflow})
	}

	for _, suggestion := range outcome.RejectedTransfers {
		outflow, okOut := findTransaction(result, suggestion.OutflowID)
		inflow, okIn := findTransaction(result, suggestion.InflowID)
		if !okOut || !okIn {
			continue
		}
		learner.RejectTransfer(ctx, outflow.AccountID, inflow.AccountID)
	}

	common.LogDebug("learning applied", common.Fields{
		"categories": len(outcome.Categories),
		"renames":    len(outcome.Renames),
		"transfers":  len(outcome.ConfirmedTransfers),
	})
}

func findTransaction(result *engine.Result, id string) (model.ImportedTransaction, bool) {
	for _, row := range result.Rows {
		if row.Transaction.ID == id {
			return row.Transaction, true
		}
	}
	return model.ImportedTransaction{}, false
}
