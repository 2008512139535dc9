// Package reconcile runs transfer matching and duplicate detection over a
// whole import.
package reconcile

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/dedupe"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/descindex"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/record"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/relevance"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/transfer"
)

// Config is everything a run needs besides the data itself.
type Config struct {
	Mapping     ledger.AccountMapping
	Descriptors []descindex.Descriptor
	// Rules is the ordered exclusion list. Nil means relevance.Default.
	Rules      []relevance.Rule
	WindowDays int
	// BalanceAliases maps snapshot account names to transaction account names.
	BalanceAliases map[string]string
}

// Stats counts the outcome of a transfer run.
type Stats struct {
	Rows        int `json:"rows"`
	Transfers   int `json:"transfers"`
	Deposits    int `json:"deposits"`
	Withdrawals int `json:"withdrawals"`
	Irrelevant  int `json:"irrelevant"`
	Ambiguous   int `json:"ambiguous"` // transfers chosen among several candidates
	// Excluded counts irrelevant rows per rule name. A row excluded by
	// several rules counts once per rule.
	Excluded map[string]int `json:"excluded,omitempty"`
}

// TransferResult is the output of Transfers.
type TransferResult struct {
	Table       *ledger.Table
	Unmapped    ledger.Unmapped
	Resolutions []transfer.Resolution
	Records     []record.Record
	Consumed    []bool // per table row
	Relevant    []bool // per table row
	Stats       Stats
}

// Reconciler holds a validated Config.
type Reconciler struct {
	cfg    Config
	filter *relevance.Filter
	logger zerolog.Logger
}

// New creates a Reconciler.
func New(cfg Config, logger zerolog.Logger) *Reconciler {
	filter := relevance.Default(cfg.Mapping)
	if cfg.Rules != nil {
		filter = relevance.NewFilter(cfg.Rules...)
	}
	return &Reconciler{
		cfg:    cfg,
		filter: filter,
		logger: logger.With().Str("component", "reconcile").Logger(),
	}
}

// Filter returns the relevance filter in use.
func (r *Reconciler) Filter() *relevance.Filter {
	return r.filter
}

// Transfers resolves accounts, matches transfers and builds records.
func (r *Reconciler) Transfers(raw []ledger.RawTransaction) TransferResult {
	table, unmapped := ledger.Resolve(raw, r.cfg.Mapping)
	if unmapped.Count > 0 {
		r.logger.Warn().
			Int("rows", unmapped.Count).
			Strs("accounts", unmapped.Names).
			Msg("dropped rows with unmapped accounts")
	}

	index := descindex.Build(table, r.cfg.Descriptors)
	matcher := transfer.NewMatcher(table, r.filter, index, transfer.Options{
		WindowDays: r.cfg.WindowDays,
		Logger:     &r.logger,
	})
	resolutions := matcher.Run()
	records := record.Build(resolutions)

	relevant := make([]bool, table.Len())
	for i := range relevant {
		relevant[i] = matcher.Relevant(i)
	}

	res := TransferResult{
		Table:       table,
		Unmapped:    unmapped,
		Resolutions: resolutions,
		Records:     records,
		Consumed:    matcher.ConsumedRows(),
		Relevant:    relevant,
		Stats:       countStats(table.Len(), resolutions),
	}

	r.logger.Info().
		Int("rows", res.Stats.Rows).
		Int("transfers", res.Stats.Transfers).
		Int("deposits", res.Stats.Deposits).
		Int("withdrawals", res.Stats.Withdrawals).
		Int("ambiguous", res.Stats.Ambiguous).
		Msg("transfer matching finished")

	return res
}

// Duplicates runs the duplicate solver for every account with snapshots.
// Rows used by a transfer or excluded by the relevance filter never form
// duplicate groups.
func (r *Reconciler) Duplicates(ctx context.Context, tr TransferResult, snapshots []ledger.Snapshot) ([]dedupe.Result, error) {
	eligibleIDs := map[int]bool{}
	for i := 0; i < tr.Table.Len(); i++ {
		if tr.Relevant[i] && !tr.Consumed[i] {
			eligibleIDs[tr.Table.Row(i).ID] = true
		}
	}

	solver := dedupe.NewSolver(dedupe.Options{
		Eligible: func(tx ledger.Transaction) bool { return eligibleIDs[tx.ID] },
		Aliases:  r.cfg.BalanceAliases,
		Logger:   &r.logger,
	})
	return solver.SolveAll(ctx, tr.Table, snapshots)
}

func countStats(rows int, resolutions []transfer.Resolution) Stats {
	s := Stats{Rows: rows}
	for _, res := range resolutions {
		switch {
		case res.Pair != nil:
			s.Transfers++
			if res.Candidates > 1 {
				s.Ambiguous++
			}
		case res.Transaction.Type == ledger.TypeCredit:
			s.Deposits++
		default:
			s.Withdrawals++
		}
		if !res.Relevant {
			s.Irrelevant++
			if s.Excluded == nil {
				s.Excluded = map[string]int{}
			}
			for _, name := range res.Excluded {
				s.Excluded[name]++
			}
		}
	}
	return s
}
