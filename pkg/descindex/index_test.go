package descindex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
)

func testTable() *ledger.Table {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return ledger.NewTable([]ledger.Transaction{
		{ID: 0, AccountID: 1, Date: d, OriginalDescription: "TRANSFER TO x9999"},
		{ID: 1, AccountID: 2, Date: d, OriginalDescription: "Transfer from X1234"},
		{ID: 2, AccountID: 3, Date: d, OriginalDescription: "FOO BANK TRANSFER x1234"},
		{ID: 3, AccountID: 4, Date: d, OriginalDescription: "PAYMENT FROM X1234"},
	})
}

func testDescriptors() []Descriptor {
	return []Descriptor{
		{Key: "X1234", Targets: []int64{1}},
		{Key: "X9999", Targets: []int64{2}},
		{Key: "FOO BANK TRANSFER", Targets: []int64{2, 3}},
	}
}

func TestBuild_ForwardTargets(t *testing.T) {
	idx := Build(testTable(), testDescriptors())

	assert.Equal(t, []int64{2}, idx.Targets(0))
	assert.Equal(t, []int64{1}, idx.Targets(1))
	assert.Equal(t, []int64{1, 2, 3}, idx.Targets(2))
	assert.Equal(t, []int64{1}, idx.Targets(3))
}

func TestBuild_Mentions(t *testing.T) {
	idx := Build(testTable(), testDescriptors())

	assert.Equal(t, []bool{false, true, true, true}, idx.mentions[1])
	assert.Equal(t, []bool{true, false, true, false}, idx.mentions[2])
	assert.NotContains(t, idx.mentions, int64(4))
}

func TestBuild_ReverseDropsForeignOwnedAccounts(t *testing.T) {
	idx := Build(testTable(), testDescriptors())

	// Rows 1-3 mention account 1. Row 1 sits on account 2 (owned by "X9999")
	// and row 2 on account 3 (owned by "FOO BANK TRANSFER"); neither key
	// targets account 1, so only row 3 survives.
	rev, ok := idx.Reverse(1)
	require.True(t, ok)
	assert.Equal(t, []bool{false, false, false, true}, rev)

	_, ok = idx.Reverse(4)
	assert.False(t, ok)
}
