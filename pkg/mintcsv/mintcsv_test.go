package mintcsv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
)

const transactionsCSV = `"Date","Description","Original Description","Amount","Transaction Type","Category","Account Name","Labels","Notes"
"1/05/2024","Transfer to Savings","ONLINE TRANSFER TO SAV x9999","1,500.00","debit","Transfer","Checking","",""
"01/06/2024","Transfer from Checking","ONLINE TRANSFER FROM CHK","1500.00","credit","","Savings","moving","rent buffer"
`

func TestReadTransactions(t *testing.T) {
	txs, err := ReadTransactions(strings.NewReader(transactionsCSV))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	first := txs[0]
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "1500", first.Amount.String())
	assert.Equal(t, ledger.TypeDebit, first.Type)
	assert.Equal(t, "ONLINE TRANSFER TO SAV x9999", first.OriginalDescription)
	require.NotNil(t, first.Category)
	assert.Equal(t, "Transfer", *first.Category)
	assert.Nil(t, first.Notes)
	assert.Empty(t, first.Labels)

	second := txs[1]
	assert.Equal(t, ledger.TypeCredit, second.Type)
	assert.Nil(t, second.Category)
	assert.Equal(t, []string{"moving"}, second.Labels)
	require.NotNil(t, second.Notes)
	assert.Equal(t, "rent buffer", *second.Notes)
}

func TestReadTransactions_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "missing column",
			input:   "Date,Description,Amount\n1/1/2024,x,1\n",
			wantErr: ErrMissingColumn,
		},
		{
			name: "invalid type",
			input: "Date,Description,Original Description,Amount,Transaction Type,Category,Account Name,Labels,Notes\n" +
				"1/1/2024,x,x,1,refund,,Checking,,\n",
			wantErr: ErrInvalidType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTransactions(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := ReadTransactions(strings.NewReader(
		"Date,Description,Original Description,Amount,Transaction Type,Category,Account Name,Labels,Notes\n" +
			"someday,x,x,1,debit,,Checking,,\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestReadBalanceFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "balances_a.csv")
	b := filepath.Join(dir, "balances_b.csv")
	require.NoError(t, os.WriteFile(a, []byte("Date,Account Name,Amount\n2024-01-01,Checking,100.50\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("Date,Account Name,Amount\n2024-01-02,Savings,\"$2,000.00\"\n"), 0644))

	snaps, err := ReadBalanceFiles([]string{a, b})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "Checking", snaps[0].AccountName)
	assert.Equal(t, "100.5", snaps[0].Balance.String())
	assert.Equal(t, "Savings", snaps[1].AccountName)
	assert.Equal(t, "2000", snaps[1].Balance.String())

	_, err = ReadBalanceFiles([]string{filepath.Join(dir, "missing.csv")})
	assert.Error(t, err)
}

func TestReadTransactionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte(transactionsCSV), 0644))

	txs, err := ReadTransactionsFile(path)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}
