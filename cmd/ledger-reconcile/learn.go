package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger-reconcile/internal/cli"
	"github.com/Veraticus/ledger-reconcile/internal/common"
	"github.com/Veraticus/ledger-reconcile/internal/learn"
)

func learnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learn <history-file>",
		Short: "Replay a rename history file into the payee pattern store",
		Long: `Replay confirmed payee renames from a JSON history file, seeding the payee
pattern store with canonical names before the first interactive session.

The file is a JSON array of {"original": ..., "canonical": ...} objects.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Could not read history file %s", args[0]), err)
			}

			var events []learn.RenameEvent
			if err := json.Unmarshal(data, &events); err != nil {
				return common.NewUserError(fmt.Sprintf("History file %s is not valid JSON", args[0]), err)
			}
			if len(events) == 0 {
				fmt.Println(cli.FormatWarning("History file contains no events"))
				return nil
			}

			store, cleanup, err := getStorage(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			learner := learn.NewLearner(store.CategoryPatterns(), store.PayeePatterns(), store.TransferPatterns(), nil)

			bar := progressbar.NewOptions(len(events),
				progressbar.OptionSetDescription("Replaying renames"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)

			err = learner.LearnFromHistory(ctx, events, func(done, _ int) {
				_ = bar.Set(done)
			})
			if err != nil {
				return fmt.Errorf("history replay failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Replayed %d renames", len(events))))
			return nil
		},
	}
}
