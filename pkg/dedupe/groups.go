package dedupe

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
)

// Group is a set of identical transactions suspected to be re-imports of
// one real transaction.
type Group struct {
	Date        time.Time
	Type        ledger.TxType
	Description string // original description
	Count       int    // instances, including the genuine one
	Mean        decimal.Decimal
}

// PerInstance is the error change caused by removing one instance: removing
// a debit raises the estimate, so the error drops by the amount.
func (g Group) PerInstance() float64 {
	m := g.Mean.InexactFloat64()
	if g.Type == ledger.TypeDebit {
		return -m
	}
	return m
}

// Extra is the number of instances beyond the genuine one.
func (g Group) Extra() int {
	return g.Count - 1
}

type groupKey struct {
	date        time.Time
	typ         ledger.TxType
	description string
	amount      string
}

// FindGroups returns groups of two or more transactions sharing date, type,
// original description and amount, ordered by date then first appearance.
func FindGroups(txs []ledger.Transaction) []Group {
	counts := map[groupKey]int{}
	amounts := map[groupKey]decimal.Decimal{}
	var order []groupKey

	for _, tx := range txs {
		k := groupKey{
			date:        ledger.DateOnly(tx.Date),
			typ:         tx.Type,
			description: tx.OriginalDescription,
			amount:      tx.Amount.String(),
		}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
			amounts[k] = decimal.Zero
		}
		counts[k]++
		amounts[k] = amounts[k].Add(tx.Amount)
	}

	var out []Group
	for _, k := range order {
		n := counts[k]
		if n < 2 {
			continue
		}
		out = append(out, Group{
			Date:        k.date,
			Type:        k.typ,
			Description: k.description,
			Count:       n,
			Mean:        amounts[k].Div(decimal.NewFromInt(int64(n))),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
