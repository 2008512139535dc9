// Package ledger provides the in-memory transaction table shared by the
// transfer matcher and the duplicate solver.
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TxType is the direction of a transaction as reported by the bank feed.
type TxType string

const (
	TypeCredit TxType = "credit"
	TypeDebit  TxType = "debit"
)

// ParseTxType parses a feed type value ("credit" / "debit").
func ParseTxType(s string) (TxType, error) {
	switch TxType(s) {
	case TypeCredit, TypeDebit:
		return TxType(s), nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
}

// Opposite returns the other direction.
func (t TxType) Opposite() TxType {
	if t == TypeCredit {
		return TypeDebit
	}
	return TypeCredit
}

// Sign returns +1 for credits and -1 for debits.
func (t TxType) Sign() decimal.Decimal {
	if t == TypeCredit {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}

// Transaction represents one imported feed row.
type Transaction struct {
	ID                  int    // position in the original import, stable tie-breaker
	AccountID           int64  // resolved ledger account id
	AccountName         string // account name as reported by the feed
	Date                time.Time
	Amount              decimal.Decimal // non-negative magnitude
	Type                TxType
	Description         string // display description
	OriginalDescription string
	Category            *string // nil when the feed left it blank
	Labels              []string
	Notes               *string
}

// Signed returns the amount with the sign of its type.
func (t Transaction) Signed() decimal.Decimal {
	return t.Amount.Mul(t.Type.Sign())
}

// CategoryValue returns the category or "" when absent.
func (t Transaction) CategoryValue() string {
	return ptrToString(t.Category)
}

// NotesValue returns the notes or "" when absent.
func (t Transaction) NotesValue() string {
	return ptrToString(t.Notes)
}

// Snapshot is an independently observed account balance.
type Snapshot struct {
	AccountName string
	Date        time.Time
	Balance     decimal.Decimal
}

// RawTransaction is a feed row before account resolution.
type RawTransaction struct {
	AccountName         string
	Date                time.Time
	Amount              decimal.Decimal
	Type                TxType
	Description         string
	OriginalDescription string
	Category            *string
	Labels              []string
	Notes               *string
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptrToString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
