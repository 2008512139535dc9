// Package record turns matcher resolutions into the flat records handed to
// the ledger-posting side.
package record

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/transfer"
)

// DateLayout is the layout of Record dates.
const DateLayout = "2006-01-02"

// Type is the kind of ledger entry a record becomes.
type Type string

const (
	TypeTransfer   Type = "transfer"
	TypeDeposit    Type = "deposit"
	TypeWithdrawal Type = "withdrawal"
)

// Record is one normalized ledger entry. Every field is a primitive, a
// pointer to a primitive, or a string slice; nil pointers are absent fields.
type Record struct {
	Type            Type        `json:"type"`
	Date            string      `json:"date"`
	ProcessDate     *string     `json:"process_date,omitempty"`
	Amount          json.Number `json:"amount"`
	CategoryName    *string     `json:"category_name,omitempty"`
	Description     *string     `json:"description,omitempty"`
	SourceID        *int64      `json:"source_id,omitempty"`
	DestinationID   *int64      `json:"destination_id,omitempty"`
	SourceName      *string     `json:"source_name,omitempty"`
	DestinationName *string     `json:"destination_name,omitempty"`
	Tags            []string    `json:"tags"`
	Notes           string      `json:"notes"`
}

// Build converts resolutions in order.
func Build(resolutions []transfer.Resolution) []Record {
	out := make([]Record, 0, len(resolutions))
	for _, r := range resolutions {
		if r.Pair != nil {
			out = append(out, FromPair(*r.Pair))
		} else {
			out = append(out, FromTransaction(r.Transaction))
		}
	}
	return out
}

// FromPair builds a transfer record. The debit side is the source whichever
// side triggered the match.
func FromPair(p transfer.Pair) Record {
	src, dst := p.Source(), p.Destination()

	// Categories are concatenated without a separator; identical categories
	// collapse to one.
	category := strings.Join(nonEmpty(p.Primary.CategoryValue(), p.Opposite.CategoryValue()), "")

	// The last note line is always the credit side's description, even when
	// the credit side triggered the match and is therefore not the opposite.
	notes := withoutBlanks(p.Primary.NotesValue(), p.Opposite.NotesValue(), dst.OriginalDescription)

	var tags []string
	tags = appendUnique(tags, p.Primary.Labels...)
	tags = appendUnique(tags, p.Opposite.Labels...)

	return Record{
		Type:          TypeTransfer,
		Date:          formatDate(p.Date()),
		ProcessDate:   ptr(formatDate(p.ProcessDate())),
		Amount:        json.Number(p.Primary.Amount.String()),
		CategoryName:  ledger.StringPtr(category),
		Description:   ptr(src.OriginalDescription),
		SourceID:      ptr(src.AccountID),
		DestinationID: ptr(dst.AccountID),
		Tags:          orEmpty(tags),
		Notes:         strings.Join(notes, "\n"),
	}
}

// FromTransaction builds a deposit or withdrawal for an unmatched row. The
// counterpart is only known by its display description.
func FromTransaction(tx ledger.Transaction) Record {
	rec := Record{
		Date:         formatDate(tx.Date),
		Amount:       json.Number(tx.Amount.String()),
		CategoryName: tx.Category,
		Description:  ptr(tx.OriginalDescription),
		Tags:         orEmpty(appendUnique(nil, tx.Labels...)),
		Notes:        tx.NotesValue(),
	}

	if tx.Type == ledger.TypeCredit {
		rec.Type = TypeDeposit
		rec.DestinationID = ptr(tx.AccountID)
		rec.SourceName = ptr(tx.Description)
	} else {
		rec.Type = TypeWithdrawal
		rec.SourceID = ptr(tx.AccountID)
		rec.DestinationName = ptr(tx.Description)
	}
	return rec
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func ptr[T any](v T) *T {
	return &v
}

// nonEmpty drops blanks and repeats, keeping first-seen order.
func nonEmpty(vals ...string) []string {
	var out []string
	for _, v := range vals {
		if v != "" {
			out = appendUnique(out, v)
		}
	}
	return out
}

func withoutBlanks(vals ...string) []string {
	var out []string
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func appendUnique(dst []string, vals ...string) []string {
	for _, v := range vals {
		if v == "" {
			continue
		}
		found := false
		for _, d := range dst {
			if d == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
