// Package db provides SQLite storage for export history and run metadata.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Export runs
-- One row per CLI invocation that emitted records
CREATE TABLE IF NOT EXISTS export_runs (
    run_id TEXT PRIMARY KEY,           -- uuid
    format TEXT NOT NULL,              -- 'json', 'firefly' or 'beancount'
    exported INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP
);

-- Export history
-- Tracks which records have already been handed to the ledger
CREATE TABLE IF NOT EXISTS export_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    fingerprint TEXT NOT NULL UNIQUE,  -- content hash of the record
    run_id TEXT NOT NULL REFERENCES export_runs(run_id),
    record_type TEXT NOT NULL,         -- 'transfer', 'deposit' or 'withdrawal'
    record_date TEXT NOT NULL,         -- YYYY-MM-DD
    amount TEXT NOT NULL,              -- decimal string
    destination TEXT NOT NULL,         -- output file or stream
    exported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_export_history_date
    ON export_history(record_date);

-- Duplicate findings
-- Adjustments accepted by the duplicate solver, kept for review
CREATE TABLE IF NOT EXISTS duplicate_findings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    account TEXT NOT NULL,
    finding_date TEXT NOT NULL,        -- YYYY-MM-DD
    tx_type TEXT NOT NULL,             -- 'credit' or 'debit'
    description TEXT NOT NULL,
    instances INTEGER NOT NULL,
    adjustment REAL NOT NULL,
    found_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_duplicate_findings_account
    ON duplicate_findings(account, finding_date);

-- Key-value metadata
CREATE TABLE IF NOT EXISTS run_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.db.Exec(Schema); err != nil {
		return err
	}
	return nil
}
