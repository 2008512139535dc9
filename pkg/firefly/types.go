// Package firefly renders records as Firefly III transaction store requests.
package firefly

// Split is one transaction split of a store request. Ids are strings on the
// wire.
type Split struct {
	Type            string   `json:"type"` // transfer, deposit or withdrawal
	Date            string   `json:"date"` // ISO 8601
	ProcessDate     *string  `json:"process_date,omitempty"`
	Amount          string   `json:"amount"`
	Description     *string  `json:"description,omitempty"`
	CategoryName    *string  `json:"category_name,omitempty"`
	SourceID        *string  `json:"source_id,omitempty"`
	SourceName      *string  `json:"source_name,omitempty"`
	DestinationID   *string  `json:"destination_id,omitempty"`
	DestinationName *string  `json:"destination_name,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
	Tags            []string `json:"tags"`
	ForeignAmount   string   `json:"foreign_amount"`
	Reconciled      bool     `json:"reconciled"`
	Order           string   `json:"order"`
	CurrencyCode    string   `json:"currency_code"`
}

// StoreRequest is the body of POST /api/v1/transactions.
type StoreRequest struct {
	Transactions         []Split `json:"transactions"`
	ApplyRules           bool    `json:"apply_rules"`
	FireWebhooks         bool    `json:"fire_webhooks"`
	ErrorIfDuplicateHash bool    `json:"error_if_duplicate_hash"`
}
