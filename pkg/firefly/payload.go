package firefly

import (
	"strconv"
	"time"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/record"
)

// NewStoreRequest wraps one record in a store request. Firefly rejects
// re-sent records through the duplicate hash check.
func NewStoreRequest(rec record.Record, currency string) StoreRequest {
	split := Split{
		Type:            string(rec.Type),
		Date:            isoDate(rec.Date),
		Amount:          rec.Amount.String(),
		Description:     rec.Description,
		CategoryName:    rec.CategoryName,
		SourceID:        idString(rec.SourceID),
		SourceName:      rec.SourceName,
		DestinationID:   idString(rec.DestinationID),
		DestinationName: rec.DestinationName,
		Tags:            rec.Tags,
		ForeignAmount:   "0",
		Order:           "0",
		CurrencyCode:    currency,
	}
	if rec.ProcessDate != nil {
		d := isoDate(*rec.ProcessDate)
		split.ProcessDate = &d
	}
	if rec.Notes != "" {
		notes := rec.Notes
		split.Notes = &notes
	}
	if split.Tags == nil {
		split.Tags = []string{}
	}

	return StoreRequest{
		Transactions:         []Split{split},
		ApplyRules:           true,
		ErrorIfDuplicateHash: true,
	}
}

// NewStoreRequests renders every record.
func NewStoreRequests(recs []record.Record, currency string) []StoreRequest {
	out := make([]StoreRequest, 0, len(recs))
	for _, rec := range recs {
		out = append(out, NewStoreRequest(rec, currency))
	}
	return out
}

func idString(id *int64) *string {
	if id == nil {
		return nil
	}
	s := strconv.FormatInt(*id, 10)
	return &s
}

// isoDate turns a record date into a midnight UTC timestamp.
func isoDate(date string) string {
	t, err := time.Parse(record.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(time.RFC3339)
}
