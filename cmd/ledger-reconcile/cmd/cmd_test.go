package cmd

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/dedupe"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/record"
)

func TestWithoutExported(t *testing.T) {
	a := record.Record{Type: record.TypeDeposit, Date: "2024-01-01", Amount: "1", Tags: []string{}}
	b := record.Record{Type: record.TypeDeposit, Date: "2024-01-02", Amount: "1", Tags: []string{}}
	records := []record.Record{a, b}
	fps := record.Fingerprints(records)

	out, outFps, skipped := withoutExported(records, fps, map[string]bool{fps[0]: true})

	assert.Equal(t, 1, skipped)
	assert.Equal(t, []record.Record{b}, out)
	assert.Equal(t, []string{fps[1]}, outFps)
}

func TestWithoutExported_IdenticalPurchases(t *testing.T) {
	coffee := "COFFEE"
	rec := record.Record{
		Type:        record.TypeWithdrawal,
		Date:        "2024-02-03",
		Amount:      "4.5",
		Description: &coffee,
		Tags:        []string{},
	}
	records := []record.Record{rec, rec}
	fps := record.Fingerprints(records)
	assert.NotEqual(t, fps[0], fps[1])

	// Only the first of the two purchases went out in an earlier run.
	out, outFps, skipped := withoutExported(records, fps, map[string]bool{fps[0]: true})

	assert.Equal(t, 1, skipped)
	assert.Equal(t, []record.Record{rec}, out)
	assert.Equal(t, []string{fps[1]}, outFps)
}

func TestFindingsOf(t *testing.T) {
	results := []dedupe.Result{
		{Account: "Savings"},
		{
			Account: "Checking",
			Adjustments: []dedupe.Adjustment{{
				Group: dedupe.Group{
					Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
					Type:        ledger.TypeDebit,
					Description: "STORE A",
					Count:       3,
					Mean:        decimal.NewFromInt(20),
				},
				PerInstance: -20,
				Total:       -40,
			}},
		},
	}

	findings := findingsOf(results)

	assert.Len(t, findings, 1)
	assert.Equal(t, "Checking", findings[0].Account)
	assert.Equal(t, "2024-03-01", findings[0].Date)
	assert.Equal(t, "debit", findings[0].TxType)
	assert.Equal(t, 3, findings[0].Instances)
	assert.Equal(t, -40.0, findings[0].Adjustment)
}
