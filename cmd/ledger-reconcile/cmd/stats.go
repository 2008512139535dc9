package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/config"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/db"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display export statistics",
	Long: `Display statistics about exported records and duplicate findings.

Shows:
- Total number of exported records, by type
- Total number of runs
- Total number of recorded duplicate findings
- Last export timestamp

Example:
  ledger-reconcile stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(cfgFile)
	exitOnError(err, "failed to load configuration")

	dbPath := cfg.Resolver().GetDatabasePath()
	log.Debug().Str("path", dbPath).Msg("opening database")
	conn, err := db.Open(dbPath)
	exitOnError(err, "failed to open database")
	defer conn.Close()

	history := db.NewExportHistory(conn)
	stats, err := history.GetStats(ctx)
	exitOnError(err, "failed to get statistics")
	lastRun, err := history.GetMetadata(ctx, "last_transfers_run")
	exitOnError(err, "failed to get metadata")

	fmt.Println("\n=== Export Statistics ===")
	fmt.Printf("Total exported records: %d\n", stats.TotalExports)

	types := make([]string, 0, len(stats.ByType))
	for t := range stats.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Printf("  %-20s %d\n", t+":", stats.ByType[t])
	}

	fmt.Printf("Total runs:             %d\n", stats.TotalRuns)
	fmt.Printf("Duplicate findings:     %d\n", stats.TotalFindings)

	if stats.LastExport.Valid {
		fmt.Printf("Last export:            %s\n", stats.LastExport.String)
	} else {
		fmt.Printf("Last export:            (never)\n")
	}
	if lastRun != "" {
		fmt.Printf("Last transfers run:     %s\n", lastRun)
	}

	fmt.Println()
}
