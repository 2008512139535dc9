package beancount

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/record"
)

// Converter converts records to Beancount transactions.
type Converter struct {
	accounts map[int64]string
	currency string
	places   int32
}

// NewConverter creates a new Converter. accounts maps ledger account ids to
// Beancount account names; unmapped ids become Assets:Unmapped:ID<n>.
func NewConverter(accounts map[int64]string, currency string) *Converter {
	if currency == "" {
		currency = money.USD
	}
	places := int32(2)
	if c := money.GetCurrency(currency); c != nil {
		places = int32(c.Fraction)
	}
	return &Converter{
		accounts: accounts,
		currency: currency,
		places:   places,
	}
}

// FromRecord converts one record. Transfers post between the two asset
// accounts; deposits and withdrawals balance against an income or expense
// account named after the category.
func (c *Converter) FromRecord(rec record.Record) (Transaction, error) {
	amount, err := decimal.NewFromString(rec.Amount.String())
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid amount %q: %w", rec.Amount, err)
	}

	txn := Transaction{
		Date:      rec.Date,
		Narration: deref(rec.Description),
		Tags:      buildTags(rec.Tags),
		Metadata:  map[string]string{},
	}
	if rec.ProcessDate != nil {
		txn.Metadata["process_date"] = *rec.ProcessDate
	}
	if rec.Notes != "" {
		txn.Metadata["notes"] = rec.Notes
	}

	switch rec.Type {
	case record.TypeTransfer:
		if rec.SourceID == nil || rec.DestinationID == nil {
			return Transaction{}, fmt.Errorf("transfer on %s is missing an account", rec.Date)
		}
		txn.Postings = []Posting{
			c.posting(c.account(*rec.DestinationID), amount, ""),
			c.posting(c.account(*rec.SourceID), amount.Neg(), ""),
		}
	case record.TypeDeposit:
		if rec.DestinationID == nil {
			return Transaction{}, fmt.Errorf("deposit on %s is missing an account", rec.Date)
		}
		txn.Payee = deref(rec.SourceName)
		txn.Postings = []Posting{
			c.posting(c.account(*rec.DestinationID), amount, ""),
			c.posting(categoryAccount("Income", rec.CategoryName), amount.Neg(), ""),
		}
	case record.TypeWithdrawal:
		if rec.SourceID == nil {
			return Transaction{}, fmt.Errorf("withdrawal on %s is missing an account", rec.Date)
		}
		txn.Payee = deref(rec.DestinationName)
		txn.Postings = []Posting{
			c.posting(categoryAccount("Expenses", rec.CategoryName), amount, ""),
			c.posting(c.account(*rec.SourceID), amount.Neg(), ""),
		}
	default:
		return Transaction{}, fmt.Errorf("unknown record type %q", rec.Type)
	}

	return txn, nil
}

// FormatTransaction formats a Beancount transaction as a string.
func (c *Converter) FormatTransaction(txn Transaction) string {
	var sb strings.Builder

	// Transaction header
	sb.WriteString(txn.Date)
	sb.WriteString(" *")
	if txn.Payee != "" {
		sb.WriteString(fmt.Sprintf(" %s", quote(txn.Payee)))
	}
	sb.WriteString(fmt.Sprintf(" %s", quote(txn.Narration)))
	if len(txn.Tags) > 0 {
		sb.WriteString(" #")
		sb.WriteString(strings.Join(txn.Tags, " #"))
	}
	sb.WriteString("\n")

	keys := make([]string, 0, len(txn.Metadata))
	for k := range txn.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", k, quote(txn.Metadata[k])))
	}

	// Postings
	for _, posting := range txn.Postings {
		sb.WriteString("  ")
		sb.WriteString(posting.Account)

		// Right-align amount (typical Beancount style)
		amount := posting.Amount.StringFixed(c.places)
		spaces := 60 - len(posting.Account) - len(amount)
		if spaces < 1 {
			spaces = 1
		}
		sb.WriteString(strings.Repeat(" ", spaces))
		sb.WriteString(fmt.Sprintf("%s %s", amount, posting.Currency))

		if posting.Comment != "" {
			sb.WriteString(fmt.Sprintf(" ; %s", posting.Comment))
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

func (c *Converter) posting(account string, amount decimal.Decimal, comment string) Posting {
	return Posting{Account: account, Amount: amount, Currency: c.currency, Comment: comment}
}

func (c *Converter) account(id int64) string {
	if name, ok := c.accounts[id]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Assets:Unmapped:ID%d", id)
}

// categoryAccount maps "Food & Dining" to "<root>:FoodDining".
func categoryAccount(root string, category *string) string {
	name := sanitizeAccountName(deref(category))
	if name == "" {
		name = "Uncategorized"
	}
	return root + ":" + name
}

func sanitizeAccountName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' {
			sb.WriteRune(r)
		}
	}
	s := sb.String()
	if s == "" {
		return ""
	}
	if s[0] < 'A' || s[0] > 'Z' {
		if s[0] >= 'a' && s[0] <= 'z' {
			return strings.ToUpper(s[:1]) + s[1:]
		}
		return "X" + s
	}
	return s
}

func buildTags(labels []string) []string {
	var tags []string
	for _, l := range labels {
		tag := strings.Join(strings.Fields(l), "-")
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `"`, `'`)
	s = strings.ReplaceAll(s, "\n", " / ")
	return `"` + s + `"`
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
