package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Rhymond/go-money"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/dedupe"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/record"
)

// HumanSummary renders a transfer run for the terminal.
func HumanSummary(tr TransferResult, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rows processed: %d\n", tr.Stats.Rows)
	fmt.Fprintf(&b, "Transfers: %d (ambiguous: %d)\n", tr.Stats.Transfers, tr.Stats.Ambiguous)
	fmt.Fprintf(&b, "Deposits: %d\n", tr.Stats.Deposits)
	fmt.Fprintf(&b, "Withdrawals: %d\n", tr.Stats.Withdrawals)
	fmt.Fprintf(&b, "Excluded from matching: %d\n", tr.Stats.Irrelevant)
	rules := make([]string, 0, len(tr.Stats.Excluded))
	for name := range tr.Stats.Excluded {
		rules = append(rules, name)
	}
	sort.Strings(rules)
	for _, name := range rules {
		fmt.Fprintf(&b, "  %s: %d\n", name, tr.Stats.Excluded[name])
	}

	if tr.Unmapped.Count > 0 {
		fmt.Fprintf(&b, "\nMissing account ids: %d rows in %s\n", tr.Unmapped.Count, strings.Join(tr.Unmapped.Names, ", "))
	}

	var transfers []record.Record
	for _, rec := range tr.Records {
		if rec.Type == record.TypeTransfer {
			transfers = append(transfers, rec)
		}
	}
	if len(transfers) > 0 {
		fmt.Fprintf(&b, "\nTransfers:\n")
		for _, rec := range transfers {
			amount, _ := rec.Amount.Float64()
			fmt.Fprintf(&b, "- %s %s #%d -> #%d (posted %s)\n",
				rec.Date, display(amount, currency), *rec.SourceID, *rec.DestinationID, *rec.ProcessDate)
		}
	}
	return b.String()
}

// DuplicatesSummary renders solver results for the terminal.
func DuplicatesSummary(results []dedupe.Result, currency string) string {
	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s]\n", res.Account)
		if len(res.Trace) == 0 {
			fmt.Fprintf(&b, "  no balance snapshots overlap the transactions\n")
			continue
		}
		fmt.Fprintf(&b, "  aligned days: %d, duplicate groups: %d, candidates: %d\n",
			len(res.Initial), res.Groups, res.Candidates)
		for _, adj := range res.Adjustments {
			mean, _ := adj.Mean.Float64()
			fmt.Fprintf(&b, "  - %s %s %q x%d mean=%s adjustment=%s\n",
				adj.Date.Format(record.DateLayout), adj.Type, adj.Description, adj.Count,
				display(mean, currency), display(adj.Total, currency))
		}
		fmt.Fprintf(&b, "  convergence:")
		for _, v := range res.Trace {
			fmt.Fprintf(&b, " %s", display(v, currency))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func display(amount float64, currency string) string {
	if currency == "" {
		currency = money.USD
	}
	return money.NewFromFloat(amount, currency).Display()
}
