package cmd

import (
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/config"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/mintcsv"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/pathutil"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/reconcile"
)

// session is what every command needs after configuration is loaded.
type session struct {
	cfg        *config.Config
	paths      *pathutil.PathResolver
	rules      *config.Rules
	reconciler *reconcile.Reconciler
}

func loadSession() session {
	cfg, err := config.Load(cfgFile)
	exitOnError(err, "failed to load configuration")
	if debug {
		cfg.Debug = true
	}

	err = cfg.Validate(
		[]string{"paths", "transactions"},
		[]string{"paths", "rules"},
		[]string{"currency"},
	)
	exitOnError(err, "invalid configuration")

	paths := cfg.Resolver()
	log.Debug().Str("path", paths.GetRulesPath()).Msg("loading rules")
	rules, err := config.LoadRules(paths.GetRulesPath())
	exitOnError(err, "failed to load rules")

	rcfg, err := rules.ReconcileConfig()
	exitOnError(err, "invalid rules")

	return session{
		cfg:        cfg,
		paths:      paths,
		rules:      rules,
		reconciler: reconcile.New(rcfg, log),
	}
}

func (s session) readTransactions() []ledger.RawTransaction {
	path := s.paths.GetTransactionsPath()
	log.Info().Str("path", path).Msg("reading transactions")
	txs, err := mintcsv.ReadTransactionsFile(path)
	exitOnError(err, "failed to read transactions")
	return txs
}

func (s session) readBalances() []ledger.Snapshot {
	files, err := s.paths.BalanceFiles()
	exitOnError(err, "failed to list balance files")
	log.Info().Int("files", len(files)).Str("glob", s.paths.GetBalancesGlob()).Msg("reading balances")
	snaps, err := mintcsv.ReadBalanceFiles(files)
	exitOnError(err, "failed to read balances")
	return snaps
}
