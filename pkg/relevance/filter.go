package relevance

import (
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
)

// Filter is the OR-combination of its rules, negated.
type Filter struct {
	rules []Rule
}

// NewFilter creates a Filter from an ordered rule list.
func NewFilter(rules ...Rule) *Filter {
	return &Filter{rules: rules}
}

// Default builds the standard rule set for an account mapping: excluded
// accounts, credit-card debits and payroll deposits, followed by extra.
func Default(mapping ledger.AccountMapping, extra ...Rule) *Filter {
	rules := []Rule{
		ExcludedAccounts{Accounts: mapping.Excluded},
		CreditCardDebit{Cards: mapping.CreditCards},
		Payroll(),
	}
	return NewFilter(append(rules, extra...)...)
}

// Rules returns the configured rules.
func (f *Filter) Rules() []Rule {
	return f.rules
}

// Relevant reports whether tx may be matched as a transfer.
func (f *Filter) Relevant(tx ledger.Transaction) bool {
	for _, r := range f.rules {
		if r.Excludes(tx) {
			return false
		}
	}
	return true
}

// Explain returns the names of every rule excluding tx.
func (f *Filter) Explain(tx ledger.Transaction) []string {
	var names []string
	for _, r := range f.rules {
		if r.Excludes(tx) {
			names = append(names, r.Name())
		}
	}
	return names
}

// Mask evaluates Relevant for every row of the table.
func (f *Filter) Mask(table *ledger.Table) []bool {
	mask := make([]bool, table.Len())
	for i := range mask {
		mask[i] = f.Relevant(table.Row(i))
	}
	return mask
}
