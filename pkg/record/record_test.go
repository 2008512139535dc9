package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/transfer"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func debitSide() ledger.Transaction {
	return ledger.Transaction{
		ID:                  0,
		AccountID:           1,
		Date:                day("2024-01-01"),
		Amount:              decimal.NewFromInt(50),
		Type:                ledger.TypeDebit,
		Description:         "Transfer to Savings",
		OriginalDescription: "ONLINE TRANSFER TO SAVINGS",
		Category:            ledger.StringPtr("Transfer"),
		Labels:              []string{"monthly"},
		Notes:               ledger.StringPtr("rent buffer"),
	}
}

func creditSide() ledger.Transaction {
	return ledger.Transaction{
		ID:                  1,
		AccountID:           2,
		Date:                day("2024-01-02"),
		Amount:              decimal.NewFromInt(50),
		Type:                ledger.TypeCredit,
		Description:         "Transfer from Checking",
		OriginalDescription: "ONLINE TRANSFER FROM CHK",
		Category:            ledger.StringPtr("Savings"),
		Labels:              []string{"monthly", "savings"},
	}
}

func TestFromPair_DebitPrimary(t *testing.T) {
	rec := FromPair(transfer.Pair{Primary: debitSide(), Opposite: creditSide()})

	assert.Equal(t, TypeTransfer, rec.Type)
	assert.Equal(t, "2024-01-01", rec.Date)
	require.NotNil(t, rec.ProcessDate)
	assert.Equal(t, "2024-01-02", *rec.ProcessDate)
	assert.Equal(t, json.Number("50"), rec.Amount)
	assert.Equal(t, int64(1), *rec.SourceID)
	assert.Equal(t, int64(2), *rec.DestinationID)
	assert.Equal(t, "ONLINE TRANSFER TO SAVINGS", *rec.Description)
	assert.Equal(t, "TransferSavings", *rec.CategoryName)
	assert.Equal(t, []string{"monthly", "savings"}, rec.Tags)
	assert.Equal(t, "rent buffer\nONLINE TRANSFER FROM CHK", rec.Notes)
	assert.Nil(t, rec.SourceName)
	assert.Nil(t, rec.DestinationName)
}

func TestFromPair_CreditPrimaryInvertsRoles(t *testing.T) {
	credit := creditSide()
	credit.Date = day("2024-01-01")
	debit := debitSide()
	debit.Date = day("2024-01-03")

	rec := FromPair(transfer.Pair{Primary: credit, Opposite: debit})

	assert.Equal(t, "2024-01-03", rec.Date)
	assert.Equal(t, "2024-01-01", *rec.ProcessDate)
	assert.Equal(t, int64(1), *rec.SourceID)
	assert.Equal(t, int64(2), *rec.DestinationID)
	assert.Equal(t, "ONLINE TRANSFER TO SAVINGS", *rec.Description)
	assert.Equal(t, "SavingsTransfer", *rec.CategoryName)
	assert.Equal(t, "rent buffer\nONLINE TRANSFER FROM CHK", rec.Notes)
}

func TestFromPair_EmptyOptionalFields(t *testing.T) {
	debit := debitSide()
	debit.Category, debit.Notes, debit.Labels = nil, nil, nil
	credit := creditSide()
	credit.Category, credit.Labels = ledger.StringPtr(""), nil

	rec := FromPair(transfer.Pair{Primary: debit, Opposite: credit})

	assert.Nil(t, rec.CategoryName)
	assert.Equal(t, []string{}, rec.Tags)
	assert.Equal(t, "ONLINE TRANSFER FROM CHK", rec.Notes)
}

func TestFromPair_SameCategoryNotRepeated(t *testing.T) {
	credit := creditSide()
	credit.Category = ledger.StringPtr("Transfer")

	rec := FromPair(transfer.Pair{Primary: debitSide(), Opposite: credit})

	assert.Equal(t, "Transfer", *rec.CategoryName)
}

func TestFromTransaction(t *testing.T) {
	t.Run("credit becomes deposit", func(t *testing.T) {
		rec := FromTransaction(creditSide())

		assert.Equal(t, TypeDeposit, rec.Type)
		assert.Equal(t, int64(2), *rec.DestinationID)
		assert.Equal(t, "Transfer from Checking", *rec.SourceName)
		assert.Nil(t, rec.SourceID)
		assert.Nil(t, rec.DestinationName)
		assert.Nil(t, rec.ProcessDate)
		assert.Equal(t, "Savings", *rec.CategoryName)
		assert.Equal(t, []string{"monthly", "savings"}, rec.Tags)
		assert.Equal(t, "", rec.Notes)
	})

	t.Run("debit becomes withdrawal", func(t *testing.T) {
		rec := FromTransaction(debitSide())

		assert.Equal(t, TypeWithdrawal, rec.Type)
		assert.Equal(t, int64(1), *rec.SourceID)
		assert.Equal(t, "Transfer to Savings", *rec.DestinationName)
		assert.Nil(t, rec.DestinationID)
		assert.Nil(t, rec.SourceName)
		assert.Equal(t, "rent buffer", rec.Notes)
	})
}

func TestRecord_JSONIsFlat(t *testing.T) {
	rec := FromPair(transfer.Pair{Primary: debitSide(), Opposite: creditSide()})

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Equal(t, 50.0, fields["amount"])
	assert.Equal(t, 1.0, fields["source_id"])
	assert.NotContains(t, fields, "source_name")
	for key, v := range fields {
		switch val := v.(type) {
		case string, float64, bool:
		case []any:
			for _, item := range val {
				assert.IsType(t, "", item, key)
			}
		default:
			t.Errorf("field %s has non-primitive type %T", key, v)
		}
	}
}

func TestBuild_KeepsResolutionOrder(t *testing.T) {
	pair := transfer.Pair{Primary: debitSide(), Opposite: creditSide()}
	lone := debitSide()
	lone.Amount = decimal.NewFromFloat(12.34)

	recs := Build([]transfer.Resolution{
		{Transaction: pair.Primary, Pair: &pair},
		{Transaction: lone},
	})

	require.Len(t, recs, 2)
	assert.Equal(t, TypeTransfer, recs[0].Type)
	assert.Equal(t, TypeWithdrawal, recs[1].Type)
	assert.Equal(t, json.Number("12.34"), recs[1].Amount)
}

func TestRecord_Fingerprint(t *testing.T) {
	a := Record{Type: TypeDeposit, Date: "2024-01-01", Amount: "10", Tags: []string{}}
	b := a
	c := a
	c.Amount = "11"

	assert.Equal(t, a.Fingerprint(0), b.Fingerprint(0))
	assert.NotEqual(t, a.Fingerprint(0), c.Fingerprint(0))
	assert.NotEqual(t, a.Fingerprint(0), a.Fingerprint(1))
	assert.Len(t, a.Fingerprint(0), 36)
}

func TestFingerprints_IdenticalRecordsStayDistinct(t *testing.T) {
	coffee := Record{Type: TypeWithdrawal, Date: "2024-02-03", Amount: "4.5", Description: ptr("COFFEE"), Tags: []string{}}
	other := coffee
	other.Amount = "3"

	fps := Fingerprints([]Record{coffee, other, coffee})

	assert.Equal(t, coffee.Fingerprint(0), fps[0])
	assert.Equal(t, other.Fingerprint(0), fps[1])
	assert.Equal(t, coffee.Fingerprint(1), fps[2])
	assert.NotEqual(t, fps[0], fps[2])
	assert.Equal(t, fps, Fingerprints([]Record{coffee, other, coffee}))
}
