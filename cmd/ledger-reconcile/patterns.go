package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger-reconcile/internal/cli"
	"github.com/Veraticus/ledger-reconcile/internal/learn"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patterns",
		Aliases: []string{"pattern"},
		Short:   "Inspect and prune learned patterns",
	}

	cmd.AddCommand(patternsListCmd())
	cmd.AddCommand(patternsCleanupCmd())

	return cmd
}

func patternsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List learned patterns across all three stores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, cleanup, err := getStorage(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			categories, err := store.CategoryPatterns().List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list category patterns: %w", err)
			}
			payees, err := store.PayeePatterns().List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list payee patterns: %w", err)
			}
			transfers, err := store.TransferPatterns().List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list transfer patterns: %w", err)
			}

			if len(categories)+len(payees)+len(transfers) == 0 {
				slog.Info("No learned patterns yet")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

			if len(categories) > 0 {
				fmt.Println(cli.TitleStyle.Render("Category patterns"))
				_, _ = fmt.Fprintln(w, "PAYEE\tCATEGORY\tCONFIDENCE\tUSES\tLAST USED")
				for _, p := range categories {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%s\n",
						p.PayeePattern, p.Category, p.Confidence, p.UseCount, formatLastUsed(p.LastUsed))
				}
				_ = w.Flush()
			}

			if len(payees) > 0 {
				fmt.Println(cli.TitleStyle.Render("Payee patterns"))
				_, _ = fmt.Fprintln(w, "CANONICAL\tVARIANTS\tCONFIDENCE\tUSES")
				for _, p := range payees {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\n",
						p.Canonical, strings.Join(p.Variants, ", "), p.Confidence, p.UseCount)
				}
				_ = w.Flush()
			}

			if len(transfers) > 0 {
				fmt.Println(cli.TitleStyle.Render("Transfer patterns"))
				_, _ = fmt.Fprintln(w, "ACCOUNT PAIR\tCONFIDENCE\tCONFIRMED\tREJECTED")
				for _, p := range transfers {
					_, _ = fmt.Fprintf(w, "%s\t%.2f\t%d\t%d\n",
						p.AccountPairKey, p.Confidence(), p.SuccessfulMatches, p.RejectedMatches)
				}
				_ = w.Flush()
			}

			return nil
		},
	}
}

func patternsCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete stale, unreliable patterns",
		Long: `Delete patterns that have not been used within the retention window and
never became reliable. Recently used patterns and transfer patterns with a
strong success record are always kept.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, cleanup, err := getStorage(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			days, _ := cmd.Flags().GetInt("retention-days")
			config := learn.DefaultCleanupConfig()
			if days > 0 {
				config.Retention = time.Duration(days) * 24 * time.Hour
			}

			learner := learn.NewLearner(store.CategoryPatterns(), store.PayeePatterns(), store.TransferPatterns(), nil)
			stats, err := learner.Cleanup(ctx, config)
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Removed %d category, %d payee, %d transfer patterns",
				stats.Categories, stats.Payees, stats.Transfers)))
			return nil
		},
	}

	cmd.Flags().Int("retention-days", 0, "override the 90-day retention window")
	return cmd
}

func formatLastUsed(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("2006-01-02")
}
