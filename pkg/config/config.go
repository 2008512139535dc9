// Package config provides configuration management for ledger-reconcile.
// It loads settings from environment variables and .env files, and the
// reconciliation rules from a YAML file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/pathutil"
)

// Config represents the application configuration.
type Config struct {
	Paths    PathsConfig
	Currency string
	Debug    bool
	LogJSON  bool
}

// PathsConfig represents input and output locations.
type PathsConfig struct {
	DataDir      string
	Transactions string
	BalancesGlob string
	Rules        string
	HistoryDB    string
	ExportDir    string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	config := &Config{
		Paths: PathsConfig{
			DataDir:      getEnvOrDefault("LEDGER_DATA_DIR", "."),
			Transactions: os.Getenv("LEDGER_TRANSACTIONS"),
			BalancesGlob: os.Getenv("LEDGER_BALANCES_GLOB"),
			Rules:        os.Getenv("LEDGER_RULES"),
			HistoryDB:    os.Getenv("LEDGER_HISTORY_DB"),
			ExportDir:    os.Getenv("LEDGER_EXPORT_DIR"),
		},
		Currency: strings.ToUpper(getEnvOrDefault("LEDGER_CURRENCY", "USD")),
		Debug:    os.Getenv("DEBUG") == "true",
		LogJSON:  os.Getenv("LOG_FORMAT") == "json",
	}

	return config, nil
}

// Resolver returns a PathResolver with the configured paths and defaults for
// the rest.
func (c *Config) Resolver() *pathutil.PathResolver {
	return pathutil.New(pathutil.Config{
		DataDir:          c.Paths.DataDir,
		TransactionsPath: c.Paths.Transactions,
		BalancesGlob:     c.Paths.BalancesGlob,
		RulesPath:        c.Paths.Rules,
		DatabasePath:     c.Paths.HistoryDB,
		ExportDir:        c.Paths.ExportDir,
	})
}

// Validate validates the configuration.
// Each argument is a path such as []string{"paths", "transactions"}; the
// resolved value must be non-empty and, for input files, exist on disk.
func (c *Config) Validate(required ...[]string) error {
	var missing []string
	resolver := c.Resolver()

	for _, path := range required {
		if len(path) == 0 {
			continue
		}

		var value string
		mustExist := false
		switch path[0] {
		case "paths":
			if len(path) < 2 {
				continue
			}
			switch path[1] {
			case "dataDir":
				value = resolver.GetDataDir()
			case "transactions":
				value, mustExist = resolver.GetTransactionsPath(), true
			case "balancesGlob":
				value = resolver.GetBalancesGlob()
			case "rules":
				value, mustExist = resolver.GetRulesPath(), true
			case "historyDB":
				value = resolver.GetDatabasePath()
			case "exportDir":
				value = resolver.GetExportDir()
			}
		case "currency":
			value = c.Currency
		}

		if value == "" || (mustExist && !resolver.FileExists(value)) {
			missing = append(missing, strings.Join(path, "."))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
