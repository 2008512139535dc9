// Package pathutil provides centralized path management for the input feeds,
// the rules file, the export history database and exported ledgers.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PathResolver manages paths below a data directory.
type PathResolver struct {
	dataDir          string
	transactionsPath string
	balancesGlob     string
	rulesPath        string
	databasePath     string
	exportDir        string
}

// Config represents the configuration for PathResolver. Empty fields fall
// back to defaults below DataDir.
type Config struct {
	// DataDir is the directory holding the feeds (e.g., ~/finance/mint)
	DataDir string
	// TransactionsPath is the transaction export CSV
	TransactionsPath string
	// BalancesGlob matches the balance snapshot CSVs
	BalancesGlob string
	// RulesPath is the YAML reconciliation rules file
	RulesPath string
	// DatabasePath is the SQLite export history
	DatabasePath string
	// ExportDir receives exported ledger files
	ExportDir string
}

// New creates a new PathResolver with the given configuration.
//
// Defaults:
//   - TransactionsPath: {DataDir}/transactions.csv
//   - BalancesGlob: {DataDir}/balances*.csv
//   - RulesPath: {DataDir}/rules.yaml
//   - DatabasePath: {DataDir}/.reconcile/history.db
//   - ExportDir: {DataDir}/export
func New(config Config) *PathResolver {
	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	return &PathResolver{
		dataDir:          dataDir,
		transactionsPath: orDefault(config.TransactionsPath, filepath.Join(dataDir, "transactions.csv")),
		balancesGlob:     orDefault(config.BalancesGlob, filepath.Join(dataDir, "balances*.csv")),
		rulesPath:        orDefault(config.RulesPath, filepath.Join(dataDir, "rules.yaml")),
		databasePath:     orDefault(config.DatabasePath, filepath.Join(dataDir, ".reconcile", "history.db")),
		exportDir:        orDefault(config.ExportDir, filepath.Join(dataDir, "export")),
	}
}

// GetDataDir returns the data directory.
func (p *PathResolver) GetDataDir() string {
	return p.dataDir
}

// GetTransactionsPath returns the transaction CSV path.
func (p *PathResolver) GetTransactionsPath() string {
	return p.transactionsPath
}

// GetBalancesGlob returns the balance snapshot glob.
func (p *PathResolver) GetBalancesGlob() string {
	return p.balancesGlob
}

// GetRulesPath returns the rules file path.
func (p *PathResolver) GetRulesPath() string {
	return p.rulesPath
}

// GetDatabasePath returns the database file path.
func (p *PathResolver) GetDatabasePath() string {
	return p.databasePath
}

// GetExportDir returns the export directory.
func (p *PathResolver) GetExportDir() string {
	return p.exportDir
}

// BalanceFiles returns the files matching the balance glob, sorted.
func (p *PathResolver) BalanceFiles() ([]string, error) {
	files, err := filepath.Glob(p.balancesGlob)
	if err != nil {
		return nil, fmt.Errorf("invalid balances glob %q: %w", p.balancesGlob, err)
	}
	sort.Strings(files)
	return files, nil
}

// GetMonthFilePath returns the export file path for a month.
// yearMonth should be in YYYY-MM format.
// Example: export/2024/2024-01.beancount
func (p *PathResolver) GetMonthFilePath(yearMonth string) (string, error) {
	parts := strings.Split(yearMonth, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return "", fmt.Errorf("invalid year-month format: %s. Expected YYYY-MM", yearMonth)
	}
	return filepath.Join(p.exportDir, parts[0], yearMonth+".beancount"), nil
}

// EnsureDir creates a directory if it doesn't exist.
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
