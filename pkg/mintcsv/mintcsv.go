// Package mintcsv reads Mint transaction exports and balance snapshot files.
package mintcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
)

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing column")
	// ErrInvalidType is returned for a Transaction Type other than credit or debit.
	ErrInvalidType = errors.New("invalid transaction type")
)

var transactionColumns = []string{
	"Date", "Description", "Original Description", "Amount",
	"Transaction Type", "Category", "Account Name", "Labels", "Notes",
}

var balanceColumns = []string{"Date", "Account Name", "Amount"}

var dateLayouts = []string{
	"1/2/2006",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ReadTransactions reads a transaction export. Rows keep file order.
func ReadTransactions(r io.Reader) ([]ledger.RawTransaction, error) {
	rows, col, err := readAll(r, transactionColumns)
	if err != nil {
		return nil, err
	}

	out := make([]ledger.RawTransaction, 0, len(rows))
	for i, rec := range rows {
		line := i + 2
		date, err := parseDate(rec[col["Date"]])
		if err != nil {
			return nil, fmt.Errorf("line %d date parse: %w", line, err)
		}
		amount, err := parseAmount(rec[col["Amount"]])
		if err != nil {
			return nil, fmt.Errorf("line %d amount parse: %w", line, err)
		}
		typ, err := ledger.ParseTxType(strings.ToLower(strings.TrimSpace(rec[col["Transaction Type"]])))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %s", line, ErrInvalidType, rec[col["Transaction Type"]])
		}

		var labels []string
		if l := strings.TrimSpace(rec[col["Labels"]]); l != "" {
			labels = []string{l}
		}

		out = append(out, ledger.RawTransaction{
			AccountName:         rec[col["Account Name"]],
			Date:                date,
			Amount:              amount,
			Type:                typ,
			Description:         rec[col["Description"]],
			OriginalDescription: rec[col["Original Description"]],
			Category:            ledger.StringPtr(strings.TrimSpace(rec[col["Category"]])),
			Labels:              labels,
			Notes:               ledger.StringPtr(strings.TrimSpace(rec[col["Notes"]])),
		})
	}
	return out, nil
}

// ReadTransactionsFile reads a transaction export from disk.
func ReadTransactionsFile(path string) ([]ledger.RawTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transactions: %w", err)
	}
	defer f.Close()

	txs, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return txs, nil
}

// ReadBalances reads one balance snapshot file. Amount is the balance.
func ReadBalances(r io.Reader) ([]ledger.Snapshot, error) {
	rows, col, err := readAll(r, balanceColumns)
	if err != nil {
		return nil, err
	}

	out := make([]ledger.Snapshot, 0, len(rows))
	for i, rec := range rows {
		line := i + 2
		date, err := parseDate(rec[col["Date"]])
		if err != nil {
			return nil, fmt.Errorf("line %d date parse: %w", line, err)
		}
		balance, err := parseAmount(rec[col["Amount"]])
		if err != nil {
			return nil, fmt.Errorf("line %d amount parse: %w", line, err)
		}
		out = append(out, ledger.Snapshot{
			AccountName: rec[col["Account Name"]],
			Date:        date,
			Balance:     balance,
		})
	}
	return out, nil
}

// ReadBalanceFiles reads and concatenates snapshot files in the given order.
func ReadBalanceFiles(paths []string) ([]ledger.Snapshot, error) {
	var out []ledger.Snapshot
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open balances: %w", err)
		}
		snaps, err := ReadBalances(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, snaps...)
	}
	return out, nil
}

func readAll(r io.Reader, required []string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	headers, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	col := toIndex(headers)
	for _, k := range required {
		if _, ok := col[k]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, k)
		}
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, col, nil
}

func toIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

// parseAmount accepts "1234.56", "1,234.56" and "$1,234.56".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Replace(s, "$", "", 1)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return ledger.DateOnly(t), nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("time parse failed: %w", lastErr)
}
