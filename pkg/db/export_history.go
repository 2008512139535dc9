package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExportRecord is one record handed to the ledger.
type ExportRecord struct {
	Fingerprint string
	RecordType  string
	RecordDate  string
	Amount      string
	Destination string
	ExportedAt  time.Time
}

// Finding is an accepted duplicate adjustment.
type Finding struct {
	Account     string
	Date        string
	TxType      string
	Description string
	Instances   int
	Adjustment  float64
}

// Run identifies one CLI invocation.
type Run struct {
	ID     string
	Format string
}

// ExportHistory manages export history operations.
type ExportHistory struct {
	conn *Connection
}

// NewExportHistory creates a new ExportHistory instance.
func NewExportHistory(conn *Connection) *ExportHistory {
	return &ExportHistory{conn: conn}
}

// StartRun registers a new run with a fresh id.
func (h *ExportHistory) StartRun(ctx context.Context, format string) (Run, error) {
	run := Run{ID: uuid.NewString(), Format: format}
	_, err := h.conn.ExecContext(ctx,
		`INSERT INTO export_runs (run_id, format) VALUES (?, ?)`, run.ID, run.Format)
	if err != nil {
		return Run{}, fmt.Errorf("failed to start run: %w", err)
	}
	return run, nil
}

// FinishRun stores the counts of a run.
func (h *ExportHistory) FinishRun(ctx context.Context, run Run, exported, skipped int) error {
	_, err := h.conn.ExecContext(ctx, `
		UPDATE export_runs
		SET exported = ?, skipped = ?, finished_at = CURRENT_TIMESTAMP
		WHERE run_id = ?
	`, exported, skipped, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// RecordExports stores records in one transaction. A fingerprint seen before
// is moved to the new run.
func (h *ExportHistory) RecordExports(ctx context.Context, run Run, records []ExportRecord) error {
	query := `
		INSERT INTO export_history (fingerprint, run_id, record_type, record_date, amount, destination)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			run_id = excluded.run_id,
			destination = excluded.destination,
			exported_at = CURRENT_TIMESTAMP
	`
	return h.conn.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare export insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range records {
			if _, err := stmt.ExecContext(ctx,
				r.Fingerprint, run.ID, r.RecordType, r.RecordDate, r.Amount, r.Destination,
			); err != nil {
				return fmt.Errorf("failed to record export %s: %w", r.Fingerprint, err)
			}
		}
		return nil
	})
}

// ExportedFingerprints returns every exported fingerprint, for bulk filtering.
func (h *ExportHistory) ExportedFingerprints(ctx context.Context) (map[string]bool, error) {
	rows, err := h.conn.QueryContext(ctx, `SELECT fingerprint FROM export_history`)
	if err != nil {
		return nil, fmt.Errorf("failed to get exported fingerprints: %w", err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint: %w", err)
		}
		out[fp] = true
	}
	return out, rows.Err()
}

// RecordFindings stores accepted duplicate adjustments for a run.
func (h *ExportHistory) RecordFindings(ctx context.Context, run Run, findings []Finding) error {
	return h.conn.Transaction(ctx, func(tx *sql.Tx) error {
		for _, f := range findings {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO duplicate_findings
					(run_id, account, finding_date, tx_type, description, instances, adjustment)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, run.ID, f.Account, f.Date, f.TxType, f.Description, f.Instances, f.Adjustment); err != nil {
				return fmt.Errorf("failed to record finding: %w", err)
			}
		}
		return nil
	})
}

// Stats represents export statistics.
type Stats struct {
	TotalExports  int
	TotalRuns     int
	TotalFindings int
	ByType        map[string]int
	LastExport    sql.NullString
}

// GetStats retrieves export statistics.
func (h *ExportHistory) GetStats(ctx context.Context) (*Stats, error) {
	stats := Stats{ByType: map[string]int{}}

	if err := h.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM export_history`).Scan(&stats.TotalExports); err != nil {
		return nil, fmt.Errorf("failed to get export count: %w", err)
	}
	if err := h.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM export_runs`).Scan(&stats.TotalRuns); err != nil {
		return nil, fmt.Errorf("failed to get run count: %w", err)
	}
	if err := h.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM duplicate_findings`).Scan(&stats.TotalFindings); err != nil {
		return nil, fmt.Errorf("failed to get finding count: %w", err)
	}

	rows, err := h.conn.QueryContext(ctx, `SELECT record_type, COUNT(*) FROM export_history GROUP BY record_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to get counts by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		stats.ByType[typ] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = h.conn.QueryRowContext(ctx, `SELECT MAX(exported_at) FROM export_history`).Scan(&stats.LastExport)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get last export time: %w", err)
	}

	return &stats, nil
}

// GetMetadata retrieves a metadata value.
func (h *ExportHistory) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := h.conn.QueryRowContext(ctx, `SELECT value FROM run_metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}
	return value, nil
}

// SetMetadata sets a metadata value.
func (h *ExportHistory) SetMetadata(ctx context.Context, key, value string) error {
	_, err := h.conn.ExecContext(ctx, `
		INSERT INTO run_metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}
	return nil
}
