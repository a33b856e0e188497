package state

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

// RecordDiagnostics stores a run's findings in one transaction.
func (s *Store) RecordDiagnostics(runID string, recs []core.DiagnosticRecord) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(
		`INSERT INTO diagnostics (run_id, doc_path, rule_id, severity, message, line, col)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare diagnostic insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range recs {
		if _, err := stmt.Exec(runID, rec.DocPath, rec.RuleID, rec.Severity, rec.Message, rec.Line, rec.Column); err != nil {
			return fmt.Errorf("failed to insert diagnostic: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit diagnostics: %w", err)
	}
	s.logger.Debug("diagnostics recorded", "run_id", runID, "count", len(recs))
	return nil
}

// GetDiagnosticsForRun returns a run's findings ordered by document, line,
// column, and rule.
func (s *Store) GetDiagnosticsForRun(runID string) ([]core.DiagnosticRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT run_id, doc_path, rule_id, severity, message, line, col
		 FROM diagnostics WHERE run_id = ?
		 ORDER BY doc_path, line, col, rule_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get diagnostics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []core.DiagnosticRecord
	for rows.Next() {
		var rec core.DiagnosticRecord
		if err := rows.Scan(&rec.RunID, &rec.DocPath, &rec.RuleID, &rec.Severity, &rec.Message, &rec.Line, &rec.Column); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get diagnostics: %w", err)
	}
	return recs, nil
}
