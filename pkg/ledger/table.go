package ledger

import (
	"sort"
)

// AccountMapping maps feed account names to ledger account ids and tags the
// ids that need special treatment.
type AccountMapping struct {
	Accounts    map[string]int64
	CreditCards map[int64]bool
	Excluded    map[int64]bool
}

// Lookup returns the ledger id for an account name.
func (m AccountMapping) Lookup(name string) (int64, bool) {
	id, ok := m.Accounts[name]
	return id, ok
}

// IsCreditCard reports whether id is a credit-card account.
func (m AccountMapping) IsCreditCard(id int64) bool {
	return m.CreditCards[id]
}

// IsExcluded reports whether id never takes part in transfers.
func (m AccountMapping) IsExcluded(id int64) bool {
	return m.Excluded[id]
}

// Unmapped describes feed rows dropped because their account name has no
// ledger id.
type Unmapped struct {
	Count int      // number of dropped rows
	Names []string // distinct account names, sorted
}

// Table is the date-ordered set of resolved transactions. Row indexes are
// positions in Rows and are what other components use to refer to a row.
type Table struct {
	rows []Transaction
}

// NewTable builds a table from already resolved transactions. Rows are sorted
// by date; rows on the same day keep their input order.
func NewTable(txs []Transaction) *Table {
	rows := make([]Transaction, len(txs))
	copy(rows, txs)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
	return &Table{rows: rows}
}

// Resolve maps raw feed rows to ledger accounts. Rows whose account name is
// not in the mapping are left out of the table and reported in Unmapped.
func Resolve(raw []RawTransaction, mapping AccountMapping) (*Table, Unmapped) {
	var txs []Transaction
	var unmapped Unmapped
	seen := map[string]bool{}

	for i, r := range raw {
		id, ok := mapping.Lookup(r.AccountName)
		if !ok {
			unmapped.Count++
			if !seen[r.AccountName] {
				seen[r.AccountName] = true
				unmapped.Names = append(unmapped.Names, r.AccountName)
			}
			continue
		}
		txs = append(txs, Transaction{
			ID:                  i,
			AccountID:           id,
			AccountName:         r.AccountName,
			Date:                DateOnly(r.Date),
			Amount:              r.Amount.Abs(),
			Type:                r.Type,
			Description:         r.Description,
			OriginalDescription: r.OriginalDescription,
			Category:            r.Category,
			Labels:              r.Labels,
			Notes:               r.Notes,
		})
	}
	sort.Strings(unmapped.Names)

	return NewTable(txs), unmapped
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the transaction at index i.
func (t *Table) Row(i int) Transaction {
	return t.rows[i]
}

// Rows returns a copy of all rows in table order.
func (t *Table) Rows() []Transaction {
	out := make([]Transaction, len(t.rows))
	copy(out, t.rows)
	return out
}

// ByAccount returns the rows of one account, in table order.
func (t *Table) ByAccount(name string) []Transaction {
	var out []Transaction
	for _, r := range t.rows {
		if r.AccountName == name {
			out = append(out, r)
		}
	}
	return out
}

// AccountNames returns the distinct account names present, sorted.
func (t *Table) AccountNames() []string {
	set := map[string]bool{}
	var names []string
	for _, r := range t.rows {
		if !set[r.AccountName] {
			set[r.AccountName] = true
			names = append(names, r.AccountName)
		}
	}
	sort.Strings(names)
	return names
}
