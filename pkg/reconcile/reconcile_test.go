package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/descindex"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/record"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/relevance"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func raw(account, date string, amount float64, typ ledger.TxType, desc string) ledger.RawTransaction {
	return ledger.RawTransaction{
		AccountName:         account,
		Date:                day(date),
		Amount:              decimal.NewFromFloat(amount),
		Type:                typ,
		Description:         desc,
		OriginalDescription: desc,
	}
}

func testConfig() Config {
	return Config{
		Mapping: ledger.AccountMapping{
			Accounts:    map[string]int64{"Checking": 1, "Savings": 2, "Visa": 5},
			CreditCards: map[int64]bool{5: true},
			Excluded:    map[int64]bool{},
		},
		Descriptors: []descindex.Descriptor{{Key: "x9999", Targets: []int64{2}}},
	}
}

func sampleFeed() []ledger.RawTransaction {
	return []ledger.RawTransaction{
		raw("Brokerage", "2024-01-01", 10, ledger.TypeDebit, "FEE"),
		raw("Checking", "2024-01-05", 1500, ledger.TypeDebit, "ONLINE TRANSFER TO SAV x9999"),
		raw("Savings", "2024-01-06", 1500, ledger.TypeCredit, "ONLINE TRANSFER FROM CHK"),
		raw("Checking", "2024-01-10", 2500, ledger.TypeCredit, "ACME PAYROLL"),
		raw("Visa", "2024-01-12", 2500, ledger.TypeDebit, "FURNITURE STORE"),
		raw("Checking", "2024-03-01", 20, ledger.TypeDebit, "STORE A"),
		raw("Checking", "2024-03-01", 20, ledger.TypeDebit, "STORE A"),
		raw("Checking", "2024-03-01", 20, ledger.TypeDebit, "STORE A"),
	}
}

func TestTransfers_Pipeline(t *testing.T) {
	r := New(testConfig(), zerolog.Nop())
	res := r.Transfers(sampleFeed())

	assert.Equal(t, ledger.Unmapped{Count: 1, Names: []string{"Brokerage"}}, res.Unmapped)
	assert.Equal(t, Stats{
		Rows:        7,
		Transfers:   1,
		Deposits:    1,
		Withdrawals: 4,
		Irrelevant:  2,
		Excluded:    map[string]int{"credit_card_debit": 1, "payroll": 1},
	}, res.Stats)

	require.Len(t, res.Records, 6)
	transfer := res.Records[0]
	assert.Equal(t, record.TypeTransfer, transfer.Type)
	assert.Equal(t, "2024-01-05", transfer.Date)
	require.NotNil(t, transfer.ProcessDate)
	assert.Equal(t, "2024-01-06", *transfer.ProcessDate)
	assert.Equal(t, int64(1), *transfer.SourceID)
	assert.Equal(t, int64(2), *transfer.DestinationID)

	payroll := res.Records[1]
	assert.Equal(t, record.TypeDeposit, payroll.Type)
	assert.Equal(t, int64(1), *payroll.DestinationID)

	card := res.Records[2]
	assert.Equal(t, record.TypeWithdrawal, card.Type)
	assert.Equal(t, int64(5), *card.SourceID)
}

func TestTransfers_EveryRowInExactlyOneRecord(t *testing.T) {
	res := New(testConfig(), zerolog.Nop()).Transfers(sampleFeed())

	seen := make([]int, res.Table.Len())
	for _, resolution := range res.Resolutions {
		if resolution.Pair != nil {
			seen[resolution.Pair.PrimaryRow]++
			seen[resolution.Pair.OppositeRow]++
			assert.True(t, res.Consumed[resolution.Pair.PrimaryRow])
			assert.True(t, res.Consumed[resolution.Pair.OppositeRow])
		} else {
			seen[resolution.Row]++
			assert.False(t, res.Consumed[resolution.Row])
		}
	}
	for i, n := range seen {
		assert.Equal(t, 1, n, "row %d", i)
	}
}

func TestDuplicates_SkipsTransferRows(t *testing.T) {
	r := New(testConfig(), zerolog.Nop())
	tr := r.Transfers(sampleFeed())

	results, err := r.Duplicates(context.Background(), tr, []ledger.Snapshot{
		{AccountName: "Checking", Date: day("2024-01-05"), Balance: decimal.NewFromInt(-1500)},
		{AccountName: "Checking", Date: day("2024-01-10"), Balance: decimal.NewFromInt(1000)},
		{AccountName: "Checking", Date: day("2024-03-01"), Balance: decimal.NewFromInt(980)},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, 1, res.Groups)
	require.Len(t, res.Adjustments, 1)
	assert.Equal(t, "STORE A", res.Adjustments[0].Description)
	assert.Equal(t, -40.0, res.Adjustments[0].Total)
	assert.Equal(t, []float64{40, 0}, res.Trace)

	summary := DuplicatesSummary(results, "USD")
	assert.Contains(t, summary, "[Checking]")
	assert.Contains(t, summary, `"STORE A" x3`)
	assert.Contains(t, summary, "$40.00")
}

func TestDuplicatesSummary_NoOverlap(t *testing.T) {
	r := New(testConfig(), zerolog.Nop())
	tr := r.Transfers(sampleFeed())

	results, err := r.Duplicates(context.Background(), tr, []ledger.Snapshot{
		{AccountName: "Savings", Date: day("2023-12-01"), Balance: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)
	assert.Contains(t, DuplicatesSummary(results, ""), "no balance snapshots overlap")
}

func TestHumanSummary(t *testing.T) {
	res := New(testConfig(), zerolog.Nop()).Transfers(sampleFeed())
	out := HumanSummary(res, "USD")

	assert.Contains(t, out, "Transfers: 1 (ambiguous: 0)")
	assert.Contains(t, out, "Missing account ids: 1 rows in Brokerage")
	assert.Contains(t, out, "Excluded from matching: 2\n  credit_card_debit: 1\n  payroll: 1\n")
	assert.Contains(t, out, "- 2024-01-05 $1,500.00 #1 -> #2 (posted 2024-01-06)")
}

func TestNew_ExplicitRulesReplaceDefaults(t *testing.T) {
	cfg := testConfig()
	cfg.Rules = nil
	assert.Len(t, New(cfg, zerolog.Nop()).Filter().Rules(), 3)

	cfg.Rules = []relevance.Rule{}
	assert.Empty(t, New(cfg, zerolog.Nop()).Filter().Rules())
}
