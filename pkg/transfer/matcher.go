// Package transfer pairs debits and credits on different accounts that are
// the two halves of one internal transfer.
package transfer

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/descindex"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/relevance"
)

// DefaultWindowDays is how many days after a row its opposite may post.
const DefaultWindowDays = 5

// Format tags how a transfer was oriented.
type Format string

const (
	FormatDebit  Format = "transfer_debit"
	FormatCredit Format = "transfer_credit"
)

// Pair is a matched transfer. Primary is the row that triggered the match.
type Pair struct {
	Primary     ledger.Transaction
	Opposite    ledger.Transaction
	PrimaryRow  int
	OppositeRow int
}

// Format reports whether the debit or the credit side triggered the match.
func (p Pair) Format() Format {
	if p.Primary.Type == ledger.TypeDebit {
		return FormatDebit
	}
	return FormatCredit
}

// Source is the debit side.
func (p Pair) Source() ledger.Transaction {
	if p.Primary.Type == ledger.TypeDebit {
		return p.Primary
	}
	return p.Opposite
}

// Destination is the credit side.
func (p Pair) Destination() ledger.Transaction {
	if p.Primary.Type == ledger.TypeDebit {
		return p.Opposite
	}
	return p.Primary
}

// Date is the nominal transfer date, taken from the source side.
func (p Pair) Date() time.Time {
	return p.Source().Date
}

// ProcessDate is the date the destination side posted.
func (p Pair) ProcessDate() time.Time {
	return p.Destination().Date
}

// Resolution is the outcome for one triggering row: either a Pair or the
// row on its own.
type Resolution struct {
	Row         int
	Transaction ledger.Transaction
	Pair        *Pair
	Relevant    bool
	// Excluded names the relevance rules that kept the row out of matching.
	Excluded []string
	// Candidates is the size of the candidate set the match was chosen from.
	Candidates int
	// Refinement names the description refinement that was applied, if any.
	Refinement string
}

// IsTransfer reports whether the row was paired.
func (r Resolution) IsTransfer() bool {
	return r.Pair != nil
}

// Options configures a Matcher.
type Options struct {
	WindowDays  int
	Refinements []Refinement
	Logger      *zerolog.Logger
}

// Matcher walks a table in date order and pairs transfers.
type Matcher struct {
	table       *ledger.Table
	filter      *relevance.Filter
	relevant    []bool
	index       *descindex.Index
	window      time.Duration
	refinements []Refinement
	state       *State
	buckets     map[bucketKey][]int
	logger      zerolog.Logger
}

type bucketKey struct {
	amount string
	typ    ledger.TxType
}

func keyOf(amount decimal.Decimal, typ ledger.TxType) bucketKey {
	return bucketKey{amount: amount.String(), typ: typ}
}

// NewMatcher prepares a Matcher. The filter mask and the description index
// are computed once here.
func NewMatcher(table *ledger.Table, filter *relevance.Filter, index *descindex.Index, opts Options) *Matcher {
	window := opts.WindowDays
	if window <= 0 {
		window = DefaultWindowDays
	}
	refinements := opts.Refinements
	if refinements == nil {
		refinements = DefaultRefinements()
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "transfer").Logger()
	}

	buckets := map[bucketKey][]int{}
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		k := keyOf(row.Amount, row.Type)
		buckets[k] = append(buckets[k], i)
	}

	return &Matcher{
		table:       table,
		filter:      filter,
		relevant:    filter.Mask(table),
		index:       index,
		window:      time.Duration(window) * 24 * time.Hour,
		refinements: refinements,
		state:       NewState(table.Len()),
		buckets:     buckets,
		logger:      logger,
	}
}

// Run resolves every row once. Rows consumed as the opposite side of an
// earlier transfer produce no Resolution of their own.
func (m *Matcher) Run() []Resolution {
	var out []Resolution
	for i := 0; i < m.table.Len(); i++ {
		if !m.state.IsAvailable(i) {
			continue
		}
		out = append(out, m.resolve(i))
	}
	return out
}

// ConsumedRows returns the consumed flag of every row.
func (m *Matcher) ConsumedRows() []bool {
	return m.state.Snapshot()
}

// Relevant reports the filter result for row i.
func (m *Matcher) Relevant(i int) bool {
	return m.relevant[i]
}

func (m *Matcher) resolve(i int) Resolution {
	row := m.table.Row(i)
	res := Resolution{Row: i, Transaction: row, Relevant: m.relevant[i]}
	if !m.relevant[i] {
		res.Excluded = m.filter.Explain(row)
		return res
	}

	candidates := m.candidates(i)
	candidates, refinement := refine(m.refinements, m.table, m.index, i, candidates)
	res.Candidates = len(candidates)
	res.Refinement = refinement
	if len(candidates) == 0 {
		return res
	}

	// Candidates are in table order, which is date order with ties kept in
	// import order, so the first one is the earliest.
	j := candidates[0]
	m.state.MarkConsumed(i)
	m.state.MarkConsumed(j)
	res.Pair = &Pair{
		Primary:     row,
		Opposite:    m.table.Row(j),
		PrimaryRow:  i,
		OppositeRow: j,
	}

	m.logger.Debug().
		Int("row", row.ID).
		Int("opposite", res.Pair.Opposite.ID).
		Int64("source_id", res.Pair.Source().AccountID).
		Int64("destination_id", res.Pair.Destination().AccountID).
		Str("format", string(res.Pair.Format())).
		Str("amount", row.Amount.String()).
		Int("candidates", res.Candidates).
		Str("refinement", refinement).
		Msg("matched transfer")

	return res
}

// candidates returns the base opposing set for row i in table order.
func (m *Matcher) candidates(i int) []int {
	row := m.table.Row(i)
	bucket := m.buckets[keyOf(row.Amount, row.Type.Opposite())]
	end := row.Date.Add(m.window)

	start := sort.Search(len(bucket), func(k int) bool {
		return !m.table.Row(bucket[k]).Date.Before(row.Date)
	})

	var out []int
	for _, j := range bucket[start:] {
		cand := m.table.Row(j)
		if cand.Date.After(end) {
			break
		}
		if !cand.Amount.Equal(row.Amount) {
			continue
		}
		if cand.AccountID == row.AccountID || !m.state.IsAvailable(j) || !m.relevant[j] {
			continue
		}
		out = append(out, j)
	}
	return out
}
