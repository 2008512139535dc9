package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/beancount"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/db"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/firefly"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/reconcile"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/record"
)

var (
	outputFormat string
	outputPath   string
	skipExported bool
	dryRun       bool
	showSummary  bool
)

// transfersCmd represents the transfers command.
var transfersCmd = &cobra.Command{
	Use:   "transfers",
	Short: "Match transfers and emit ledger records",
	Long: `Match the debit and credit halves of internal transfers and emit one
record per transfer, deposit or withdrawal.

This command:
1. Reads the transaction export and the rules file
2. Drops rows whose account has no ledger id and reports them
3. Pairs transfers between accounts
4. Writes records as json, firefly or beancount
5. Records what was written in the export history

Example:
  ledger-reconcile transfers --format json --out records.json
  ledger-reconcile transfers --format firefly --skip-exported
  ledger-reconcile transfers --format beancount --dry-run`,
	Run: runTransfers,
}

func init() {
	transfersCmd.Flags().StringVar(&outputFormat, "format", "json", "Output format: json, firefly or beancount")
	transfersCmd.Flags().StringVar(&outputPath, "out", "", "Output file for json and firefly (default stdout)")
	transfersCmd.Flags().BoolVar(&skipExported, "skip-exported", false, "Skip records exported by a previous run")
	transfersCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Dry run mode (no history or ledger writes)")
	transfersCmd.Flags().BoolVar(&showSummary, "summary", true, "Print a summary to stderr")
}

func runTransfers(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch outputFormat {
	case "json", "firefly", "beancount":
	default:
		exitOnError(fmt.Errorf("unknown format %q", outputFormat), "invalid flags")
	}

	s := loadSession()
	result := s.reconciler.Transfers(s.readTransactions())
	if showSummary {
		fmt.Fprint(os.Stderr, reconcile.HumanSummary(result, s.cfg.Currency))
	}

	exitOnError(exportRecords(ctx, s, result.Records), "failed to export records")
}

// exportRecords writes records and updates the export history. The history
// connection is closed before it returns, whatever the outcome.
func exportRecords(ctx context.Context, s session, records []record.Record) error {
	fingerprints := record.Fingerprints(records)

	var history *db.ExportHistory
	if skipExported || !dryRun {
		dbPath := s.paths.GetDatabasePath()
		log.Debug().Str("path", dbPath).Msg("opening database")
		conn, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer conn.Close()
		history = db.NewExportHistory(conn)
	}

	skipped := 0
	if skipExported {
		exported, err := history.ExportedFingerprints(ctx)
		if err != nil {
			return err
		}
		records, fingerprints, skipped = withoutExported(records, fingerprints, exported)
		log.Info().Int("skipped", skipped).Msg("skipped already exported records")
	}

	destinations, err := writeRecords(s, records)
	if err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}

	if dryRun {
		log.Info().Int("records", len(records)).Msg("dry run, history not updated")
		return nil
	}

	run, err := history.StartRun(ctx, outputFormat)
	if err != nil {
		return err
	}

	entries := make([]db.ExportRecord, 0, len(records))
	for i, rec := range records {
		entries = append(entries, db.ExportRecord{
			Fingerprint: fingerprints[i],
			RecordType:  string(rec.Type),
			RecordDate:  rec.Date,
			Amount:      string(rec.Amount),
			Destination: destinations[i],
		})
	}
	if err := history.RecordExports(ctx, run, entries); err != nil {
		return err
	}
	if err := history.FinishRun(ctx, run, len(records), skipped); err != nil {
		return err
	}
	if err := history.SetMetadata(ctx, "last_transfers_run", run.ID); err != nil {
		return err
	}

	log.Info().
		Str("run_id", run.ID).
		Int("exported", len(records)).
		Int("skipped", skipped).
		Msg("transfers exported")
	return nil
}

// withoutExported drops records whose fingerprint is already in the history.
// fingerprints runs parallel to records.
func withoutExported(records []record.Record, fingerprints []string, exported map[string]bool) ([]record.Record, []string, int) {
	out := make([]record.Record, 0, len(records))
	outFps := make([]string, 0, len(fingerprints))
	for i, rec := range records {
		if !exported[fingerprints[i]] {
			out = append(out, rec)
			outFps = append(outFps, fingerprints[i])
		}
	}
	return out, outFps, len(records) - len(out)
}

// writeRecords writes records in the chosen format and returns, per record,
// where it went.
func writeRecords(s session, records []record.Record) ([]string, error) {
	if outputFormat == "beancount" {
		return writeBeancount(s, records)
	}

	var w io.Writer = os.Stdout
	destination := "stdout"
	if outputPath != "" && !dryRun {
		if err := s.paths.EnsureParentDir(outputPath); err != nil {
			return nil, err
		}
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
		destination = outputPath
	}

	enc := json.NewEncoder(w)
	if outputFormat == "firefly" {
		// One store request per line.
		for _, req := range firefly.NewStoreRequests(records, s.cfg.Currency) {
			if err := enc.Encode(req); err != nil {
				return nil, fmt.Errorf("failed to encode request: %w", err)
			}
		}
	} else {
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return nil, fmt.Errorf("failed to encode records: %w", err)
		}
	}

	destinations := make([]string, len(records))
	for i := range destinations {
		destinations[i] = destination
	}
	return destinations, nil
}

func writeBeancount(s session, records []record.Record) ([]string, error) {
	converter := beancount.NewConverter(s.rules.BeancountAccounts, s.cfg.Currency)

	txns := make([]beancount.Transaction, 0, len(records))
	for _, rec := range records {
		txn, err := converter.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	destinations := make([]string, len(txns))
	for i, txn := range txns {
		path, err := s.paths.GetMonthFilePath(txn.YearMonth())
		if err != nil {
			return nil, err
		}
		destinations[i] = path
	}

	if dryRun {
		for _, txn := range txns {
			fmt.Println(converter.FormatTransaction(txn))
		}
		return destinations, nil
	}

	repo := beancount.NewFileSystemRepository(s.paths)
	months, err := repo.AppendAll(txns, converter.FormatTransaction)
	if err != nil {
		return nil, err
	}
	log.Info().Strs("months", months).Int("transactions", len(txns)).Msg("appended to beancount files")
	return destinations, nil
}
