// Package beancount renders records as Beancount transactions and appends
// them to monthly ledger files.
package beancount

import "github.com/shopspring/decimal"

// Transaction represents a Beancount transaction.
type Transaction struct {
	Date      string            // YYYY-MM-DD
	Narration string            // Transaction description
	Payee     string            // Payee name (optional)
	Tags      []string          // Tags without the leading '#'
	Metadata  map[string]string // Metadata key-value pairs
	Postings  []Posting         // Transaction postings
}

// Posting represents a posting in a Beancount transaction.
type Posting struct {
	Account  string          // Account name (e.g., "Assets:Bank:Checking")
	Amount   decimal.Decimal // positive for debit, negative for credit
	Currency string          // Currency code (e.g., "USD")
	Comment  string          // Posting comment (optional)
}

// YearMonth returns the YYYY-MM file key of the transaction.
func (t Transaction) YearMonth() string {
	if len(t.Date) < 7 {
		return ""
	}
	return t.Date[:7]
}
