package dedupe

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
)

// Adjustment is an accepted duplicate removal.
type Adjustment struct {
	Group
	PerInstance float64 // error change for one removed instance
	Total       float64 // PerInstance * (Count - 1), what was applied
	Score       float64 // total abs error the adjustment was ranked by
}

// Result is the solver output for one account.
type Result struct {
	Account     string
	Initial     []Point // aligned series before any adjustment
	Series      []Point // aligned series after accepted adjustments
	Groups      int     // duplicate groups found
	Candidates  int     // groups that improved their own suffix
	Adjustments []Adjustment
	// Trace holds the total abs error before the first acceptance and after
	// each one. It never increases.
	Trace []float64
}

// Options configures a Solver.
type Options struct {
	// Eligible limits which transactions may form duplicate groups. All
	// transactions still count towards the estimated balance. Nil means all.
	Eligible func(ledger.Transaction) bool
	// Aliases maps a snapshot account name to the transaction account name
	// when the balance feed names accounts differently.
	Aliases map[string]string
	// Concurrency bounds SolveAll. Defaults to 4.
	Concurrency int
	Logger      *zerolog.Logger
}

// Solver greedily removes duplicate groups that explain balance drift.
type Solver struct {
	eligible    func(ledger.Transaction) bool
	aliases     map[string]string
	concurrency int
	logger      zerolog.Logger
}

// NewSolver creates a Solver.
func NewSolver(opts Options) *Solver {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "dedupe").Logger()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Solver{
		eligible:    opts.Eligible,
		aliases:     opts.Aliases,
		concurrency: concurrency,
		logger:      logger,
	}
}

// candidate is a group that passed the local suffix test.
type candidate struct {
	group Group
	start int
	adj   float64
	score float64
}

// fold is the accumulator of the greedy pass.
type fold struct {
	errors   []float64
	total    float64
	accepted []Adjustment
	trace    []float64
}

// Solve runs the solver for one account. txs must all belong to the account.
// No overlap between snapshots and transaction days yields an empty result.
func (s *Solver) Solve(account string, txs []ledger.Transaction, snapshots []ledger.Snapshot) Result {
	res := Result{Account: account}

	points := Align(Observed(snapshots), Estimated(txs))
	if len(points) == 0 {
		s.logger.Debug().Str("account", account).Msg("no overlapping balance dates")
		return res
	}
	res.Initial = points

	var eligible []ledger.Transaction
	for _, tx := range txs {
		if s.eligible == nil || s.eligible(tx) {
			eligible = append(eligible, tx)
		}
	}
	groups := FindGroups(eligible)
	res.Groups = len(groups)

	errs := errorsOf(points)
	candidates := s.candidates(points, errs, groups)
	res.Candidates = len(candidates)

	acc := fold{errors: errs, total: floats.Norm(errs, 1)}
	acc.trace = []float64{acc.total}
	for _, c := range candidates {
		acc = s.step(acc, c)
	}

	res.Adjustments = acc.accepted
	res.Trace = acc.trace
	res.Series = make([]Point, len(points))
	for i, p := range points {
		p.Error = acc.errors[i]
		res.Series[i] = p
	}

	s.logger.Info().
		Str("account", account).
		Int("points", len(points)).
		Int("groups", res.Groups).
		Int("candidates", res.Candidates).
		Int("accepted", len(res.Adjustments)).
		Float64("initial_error", res.Trace[0]).
		Float64("final_error", acc.total).
		Msg("duplicate solve finished")

	return res
}

// candidates keeps the groups whose single-instance removal lowers the mean
// abs error over their own suffix, scored by the whole-series error with all
// extra instances removed, best first.
func (s *Solver) candidates(points []Point, errs []float64, groups []Group) []candidate {
	var out []candidate
	for _, g := range groups {
		start := suffixStart(points, g.Date)
		suffix := errs[start:]
		if len(suffix) == 0 {
			continue
		}

		adj := g.PerInstance()
		shifted := make([]float64, len(suffix))
		copy(shifted, suffix)
		floats.AddConst(adj, shifted)

		n := float64(len(suffix))
		if floats.Norm(shifted, 1)/n >= floats.Norm(suffix, 1)/n {
			continue
		}

		out = append(out, candidate{
			group: g,
			start: start,
			adj:   adj,
			score: floats.Norm(applied(errs, start, adj*float64(g.Extra())), 1),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].score < out[j].score })
	return out
}

// step tries one candidate and keeps it only if the total error drops.
func (s *Solver) step(acc fold, c candidate) fold {
	total := c.adj * float64(c.group.Extra())
	attempt := applied(acc.errors, c.start, total)
	next := floats.Norm(attempt, 1)
	if next >= acc.total {
		return acc
	}

	s.logger.Debug().
		Time("date", c.group.Date).
		Str("description", c.group.Description).
		Int("count", c.group.Count).
		Float64("adjustment", total).
		Float64("error", next).
		Msg("accepted duplicate")

	return fold{
		errors: attempt,
		total:  next,
		accepted: append(acc.accepted, Adjustment{
			Group:       c.group,
			PerInstance: c.adj,
			Total:       total,
			Score:       c.score,
		}),
		trace: append(acc.trace, next),
	}
}

// SolveAll solves every account that has snapshots. Accounts are independent
// and are solved concurrently; results are ordered by account name.
func (s *Solver) SolveAll(ctx context.Context, table *ledger.Table, snapshots []ledger.Snapshot) ([]Result, error) {
	byAccount := map[string][]ledger.Snapshot{}
	for _, snap := range snapshots {
		byAccount[snap.AccountName] = append(byAccount[snap.AccountName], snap)
	}
	names := make([]string, 0, len(byAccount))
	for name := range byAccount {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]Result, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, name := range names {
		account := name
		if alias, ok := s.aliases[name]; ok {
			account = alias
		}
		txs := table.ByAccount(account)
		snaps := byAccount[name]

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("solve %s: %w", name, err)
			}
			results[i] = s.Solve(name, txs, snaps)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// applied returns a copy of errs with delta added from index start on.
func applied(errs []float64, start int, delta float64) []float64 {
	out := make([]float64, len(errs))
	copy(out, errs)
	floats.AddConst(delta, out[start:])
	return out
}
