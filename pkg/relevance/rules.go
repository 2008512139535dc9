// Package relevance decides which transactions may take part in transfer
// matching. A transaction is relevant when no exclusion rule matches it.
package relevance

import (
	"strings"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
)

// Rule is one exclusion predicate.
type Rule interface {
	Name() string
	Excludes(tx ledger.Transaction) bool
}

// ExcludedAccounts excludes every transaction on the given accounts, e.g. a
// 401k that never sees transfers.
type ExcludedAccounts struct {
	Accounts map[int64]bool
}

func (r ExcludedAccounts) Name() string { return "excluded_account" }

func (r ExcludedAccounts) Excludes(tx ledger.Transaction) bool {
	return r.Accounts[tx.AccountID]
}

// Reimbursement excludes rows on a payment-app account that look like a
// friend paying back rather than a transfer. Both conditions are optional;
// when both are set they must both hold.
type Reimbursement struct {
	AccountID int64
	// Patterns are matched case-insensitively against the original description.
	Patterns []string
	// RequireCategorized additionally requires a category other than "Transfer".
	RequireCategorized bool
}

func (r Reimbursement) Name() string { return "reimbursement" }

func (r Reimbursement) Excludes(tx ledger.Transaction) bool {
	if tx.AccountID != r.AccountID {
		return false
	}
	if len(r.Patterns) > 0 && !containsAny(tx.OriginalDescription, r.Patterns) {
		return false
	}
	if r.RequireCategorized {
		category := tx.CategoryValue()
		if category == "" || category == "Transfer" {
			return false
		}
	}
	return len(r.Patterns) > 0 || r.RequireCategorized
}

// CreditCardDebit excludes debits on credit cards: payments to a card can be
// transfers, outgoing card charges never are.
type CreditCardDebit struct {
	Cards map[int64]bool
}

func (r CreditCardDebit) Name() string { return "credit_card_debit" }

func (r CreditCardDebit) Excludes(tx ledger.Transaction) bool {
	return r.Cards[tx.AccountID] && tx.Type == ledger.TypeDebit
}

// DescriptionContains excludes rows whose original description contains any
// of the patterns, case-insensitively. Used for payroll deposits, which have
// no debit side in the ledger.
type DescriptionContains struct {
	Label    string
	Patterns []string
}

func (r DescriptionContains) Name() string {
	if r.Label != "" {
		return r.Label
	}
	return "description"
}

func (r DescriptionContains) Excludes(tx ledger.Transaction) bool {
	return containsAny(tx.OriginalDescription, r.Patterns)
}

// Payroll is the default paycheck rule.
func Payroll() DescriptionContains {
	return DescriptionContains{Label: "payroll", Patterns: []string{"PAYROLL"}}
}

func containsAny(s string, patterns []string) bool {
	upper := strings.ToUpper(s)
	for _, p := range patterns {
		if p != "" && strings.Contains(upper, strings.ToUpper(p)) {
			return true
		}
	}
	return false
}
