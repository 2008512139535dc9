package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/db"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/dedupe"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/reconcile"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/record"
)

var (
	duplicatesJSON   bool
	duplicatesDryRun bool
)

// duplicatesCmd represents the duplicates command.
var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Find duplicate imports from balance drift",
	Long: `Compare the running balance implied by the transactions with the
balances observed at the bank and propose duplicate groups whose removal
explains the difference.

Transfer halves and rows excluded from matching are never proposed.

Example:
  ledger-reconcile duplicates
  ledger-reconcile duplicates --json > duplicates.json`,
	Run: runDuplicates,
}

func init() {
	duplicatesCmd.Flags().BoolVar(&duplicatesJSON, "json", false, "Write results as JSON to stdout")
	duplicatesCmd.Flags().BoolVar(&duplicatesDryRun, "dry-run", false, "Do not record findings in the history")
}

func runDuplicates(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s := loadSession()
	if err := s.cfg.Validate([]string{"paths", "balancesGlob"}); err != nil {
		exitOnError(err, "invalid configuration")
	}

	tr := s.reconciler.Transfers(s.readTransactions())
	results, err := s.reconciler.Duplicates(ctx, tr, s.readBalances())
	exitOnError(err, "failed to solve duplicates")

	if duplicatesJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		exitOnError(enc.Encode(results), "failed to encode results")
	} else {
		fmt.Print(reconcile.DuplicatesSummary(results, s.cfg.Currency))
	}

	if duplicatesDryRun {
		return
	}

	exitOnError(recordFindings(ctx, s, results), "failed to record findings")
}

// recordFindings stores accepted adjustments as one history run.
func recordFindings(ctx context.Context, s session, results []dedupe.Result) error {
	conn, err := db.Open(s.paths.GetDatabasePath())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()
	history := db.NewExportHistory(conn)

	run, err := history.StartRun(ctx, "duplicates")
	if err != nil {
		return err
	}
	findings := findingsOf(results)
	if err := history.RecordFindings(ctx, run, findings); err != nil {
		return err
	}
	if err := history.FinishRun(ctx, run, 0, 0); err != nil {
		return err
	}

	log.Info().Str("run_id", run.ID).Int("findings", len(findings)).Msg("duplicate findings recorded")
	return nil
}

func findingsOf(results []dedupe.Result) []db.Finding {
	var out []db.Finding
	for _, res := range results {
		for _, adj := range res.Adjustments {
			out = append(out, db.Finding{
				Account:     res.Account,
				Date:        adj.Date.Format(record.DateLayout),
				TxType:      string(adj.Type),
				Description: adj.Description,
				Instances:   adj.Count,
				Adjustment:  adj.Total,
			})
		}
	}
	return out
}
