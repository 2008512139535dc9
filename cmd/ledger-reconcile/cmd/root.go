// Package cmd provides CLI commands for ledger-reconcile.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/logger"
)

var (
	cfgFile string
	debug   bool
	logJSON bool

	log = zerolog.Nop()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ledger-reconcile",
	Short: "Reconcile a personal-finance transaction export",
	Long: `ledger-reconcile cleans up a transaction export before it is loaded
into a personal ledger.

It supports:
- Matching the two halves of internal transfers into one record
- Emitting records as JSON, Firefly III requests or Beancount entries
- Finding duplicate imports by comparing against observed balances
- Remembering what was exported in a SQLite history

Example:
  ledger-reconcile transfers --format firefly --skip-exported
  ledger-reconcile duplicates
  ledger-reconcile stats`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logger.New(logger.Config{Debug: debug, JSON: logJSON})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log JSON lines instead of console output")

	rootCmd.AddCommand(transfersCmd)
	rootCmd.AddCommand(duplicatesCmd)
	rootCmd.AddCommand(statsCmd)
}

// exitOnError logs err and exits when it is non-nil.
func exitOnError(err error, msg string) {
	if err != nil {
		log.Error().Err(err).Msg(msg)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
