package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestResolve_ReportsUnmappedAccounts(t *testing.T) {
	mapping := AccountMapping{Accounts: map[string]int64{"Checking": 1, "Savings": 2}}
	raw := []RawTransaction{
		{AccountName: "Checking", Date: day("2024-01-02"), Amount: decimal.NewFromInt(10), Type: TypeDebit},
		{AccountName: "Old Card", Date: day("2024-01-01"), Amount: decimal.NewFromInt(5), Type: TypeDebit},
		{AccountName: "Savings", Date: day("2024-01-01"), Amount: decimal.NewFromInt(-10), Type: TypeCredit},
		{AccountName: "Old Card", Date: day("2024-01-03"), Amount: decimal.NewFromInt(7), Type: TypeCredit},
		{AccountName: "Brokerage", Date: day("2024-01-03"), Amount: decimal.NewFromInt(7), Type: TypeCredit},
	}

	table, unmapped := Resolve(raw, mapping)

	assert.Equal(t, 3, unmapped.Count)
	assert.Equal(t, []string{"Brokerage", "Old Card"}, unmapped.Names)
	require.Equal(t, 2, table.Len())

	// Sorted by date, ids keep the import position.
	assert.Equal(t, "Savings", table.Row(0).AccountName)
	assert.Equal(t, 2, table.Row(0).ID)
	assert.Equal(t, int64(2), table.Row(0).AccountID)
	assert.True(t, table.Row(0).Amount.Equal(decimal.NewFromInt(10)), "amount is stored as magnitude")
	assert.Equal(t, 0, table.Row(1).ID)
}

func TestNewTable_StableOnSameDay(t *testing.T) {
	table := NewTable([]Transaction{
		{ID: 0, Date: day("2024-01-02")},
		{ID: 1, Date: day("2024-01-01")},
		{ID: 2, Date: day("2024-01-02")},
		{ID: 3, Date: day("2024-01-01")},
	})

	var ids []int
	for _, r := range table.Rows() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int{1, 3, 0, 2}, ids)
}

func TestTransaction_Signed(t *testing.T) {
	credit := Transaction{Amount: decimal.NewFromFloat(12.5), Type: TypeCredit}
	debit := Transaction{Amount: decimal.NewFromFloat(12.5), Type: TypeDebit}

	assert.Equal(t, "12.5", credit.Signed().String())
	assert.Equal(t, "-12.5", debit.Signed().String())
}

func TestParseTxType(t *testing.T) {
	typ, err := ParseTxType("debit")
	require.NoError(t, err)
	assert.Equal(t, TypeDebit, typ)
	assert.Equal(t, TypeCredit, typ.Opposite())

	_, err = ParseTxType("refund")
	assert.Error(t, err)
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	require.NotNil(t, StringPtr("Food"))
	assert.Equal(t, "Food", *StringPtr("Food"))

	tx := Transaction{Category: StringPtr("Food")}
	assert.Equal(t, "Food", tx.CategoryValue())
	assert.Equal(t, "", tx.NotesValue())
}
