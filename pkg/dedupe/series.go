// Package dedupe finds duplicate imports by comparing the running balance
// implied by the transactions with balances observed at the bank.
package dedupe

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
)

// Balance is an account balance on one day.
type Balance struct {
	Date   time.Time
	Amount decimal.Decimal
}

// Point is one aligned day of the error series.
type Point struct {
	Date      time.Time
	Observed  float64
	Estimated float64
	Error     float64 // Observed - Estimated, after any accepted adjustment
}

// Estimated returns the cumulative signed sum of txs at the end of each day
// that has transactions.
func Estimated(txs []ledger.Transaction) []Balance {
	byDay := map[time.Time]decimal.Decimal{}
	for _, tx := range txs {
		d := ledger.DateOnly(tx.Date)
		byDay[d] = byDay[d].Add(tx.Signed())
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]Balance, 0, len(days))
	running := decimal.Zero
	for _, d := range days {
		running = running.Add(byDay[d])
		out = append(out, Balance{Date: d, Amount: running})
	}
	return out
}

// Observed returns the snapshots on days where the balance moved from the
// previous snapshot. The first snapshot is always kept. When several
// snapshots share a day the last one wins.
func Observed(snapshots []ledger.Snapshot) []Balance {
	sorted := make([]ledger.Snapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var daily []Balance
	for _, s := range sorted {
		d := ledger.DateOnly(s.Date)
		if n := len(daily); n > 0 && daily[n-1].Date.Equal(d) {
			daily[n-1].Amount = s.Balance
			continue
		}
		daily = append(daily, Balance{Date: d, Amount: s.Balance})
	}

	var out []Balance
	for i, b := range daily {
		if i > 0 && b.Amount.Equal(daily[i-1].Amount) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Align joins observed and estimated balances on exact dates. Days present
// in only one of the two are dropped.
func Align(observed, estimated []Balance) []Point {
	est := make(map[time.Time]decimal.Decimal, len(estimated))
	for _, b := range estimated {
		est[b.Date] = b.Amount
	}

	var out []Point
	for _, o := range observed {
		e, ok := est[o.Date]
		if !ok {
			continue
		}
		obs := o.Amount.InexactFloat64()
		estimate := e.InexactFloat64()
		out = append(out, Point{
			Date:      o.Date,
			Observed:  obs,
			Estimated: estimate,
			Error:     obs - estimate,
		})
	}
	return out
}

func errorsOf(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Error
	}
	return out
}

// suffixStart returns the index of the first point on or after date.
func suffixStart(points []Point, date time.Time) int {
	return sort.Search(len(points), func(i int) bool {
		return !points[i].Date.Before(date)
	})
}
