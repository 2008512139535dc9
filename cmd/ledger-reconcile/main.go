// Package main is the entry point for the ledger-reconcile CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/ledger-reconcile/cmd/ledger-reconcile/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
