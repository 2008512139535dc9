package beancount

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/pathutil"
)

// Repository stores reconciled entries in one ledger file per month.
type Repository interface {
	// AppendEntry adds one rendered entry to the month's ledger file.
	AppendEntry(yearMonth, entry string, comment ...string) error

	// AppendAll renders and appends entries, each to the file of its month.
	AppendAll(txns []Transaction, format func(Transaction) string) ([]string, error)

	ReadMonthFile(yearMonth string) (string, error)
	MonthFileExists(yearMonth string) bool

	// EnsureMonthFile creates the month's ledger file with its header.
	EnsureMonthFile(yearMonth string) error
}

// FileSystemRepository keeps monthly ledger files under the export directory.
type FileSystemRepository struct {
	paths *pathutil.PathResolver
	now   func() time.Time
}

// NewFileSystemRepository creates a FileSystemRepository.
func NewFileSystemRepository(paths *pathutil.PathResolver) *FileSystemRepository {
	return &FileSystemRepository{paths: paths, now: time.Now}
}

// AppendEntry appends one entry, creating the month's file on first use.
// Entries are separated by a blank line.
func (r *FileSystemRepository) AppendEntry(yearMonth, entry string, comment ...string) error {
	ledgerPath, err := r.paths.GetMonthFilePath(yearMonth)
	if err != nil {
		return fmt.Errorf("failed to resolve ledger file for %s: %w", yearMonth, err)
	}
	if err := r.EnsureMonthFile(yearMonth); err != nil {
		return err
	}

	var b strings.Builder
	if len(comment) > 0 && comment[0] != "" {
		fmt.Fprintf(&b, "; %s\n", comment[0])
	}
	b.WriteString(entry)
	if !strings.HasSuffix(entry, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n")

	f, err := os.OpenFile(ledgerPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open ledger file %s: %w", ledgerPath, err)
	}
	defer f.Close()

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to append entry to %s: %w", ledgerPath, err)
	}
	return nil
}

// AppendAll appends each transaction to the file of its month and returns
// the touched year-months in first-touched order.
func (r *FileSystemRepository) AppendAll(txns []Transaction, format func(Transaction) string) ([]string, error) {
	var months []string
	seen := map[string]bool{}
	for _, txn := range txns {
		yearMonth := txn.YearMonth()
		if err := r.AppendEntry(yearMonth, format(txn)); err != nil {
			return months, fmt.Errorf("failed to append %s entry: %w", txn.Date, err)
		}
		if !seen[yearMonth] {
			seen[yearMonth] = true
			months = append(months, yearMonth)
		}
	}
	return months, nil
}

// ReadMonthFile returns the month's ledger, or "" when nothing was exported.
func (r *FileSystemRepository) ReadMonthFile(yearMonth string) (string, error) {
	ledgerPath, err := r.paths.GetMonthFilePath(yearMonth)
	if err != nil {
		return "", fmt.Errorf("failed to resolve ledger file for %s: %w", yearMonth, err)
	}
	if !r.paths.FileExists(ledgerPath) {
		return "", nil
	}

	data, err := os.ReadFile(ledgerPath)
	if err != nil {
		return "", fmt.Errorf("failed to read ledger file %s: %w", ledgerPath, err)
	}
	return string(data), nil
}

// MonthFileExists reports whether anything was exported for the month.
func (r *FileSystemRepository) MonthFileExists(yearMonth string) bool {
	ledgerPath, err := r.paths.GetMonthFilePath(yearMonth)
	return err == nil && r.paths.FileExists(ledgerPath)
}

// EnsureMonthFile writes the header of a new month file. Existing files are
// left untouched.
func (r *FileSystemRepository) EnsureMonthFile(yearMonth string) error {
	ledgerPath, err := r.paths.GetMonthFilePath(yearMonth)
	if err != nil {
		return fmt.Errorf("failed to resolve ledger file for %s: %w", yearMonth, err)
	}
	if r.paths.FileExists(ledgerPath) {
		return nil
	}
	if err := r.paths.EnsureParentDir(ledgerPath); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	header := fmt.Sprintf("; Reconciled ledger entries for %s\n; Generated at %s\n\n",
		yearMonth, r.now().Format(time.RFC3339))
	if err := os.WriteFile(ledgerPath, []byte(header), 0644); err != nil {
		return fmt.Errorf("failed to create ledger file %s: %w", ledgerPath, err)
	}
	return nil
}
