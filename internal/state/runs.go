package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

const runColumns = `id, project_root, status, started_at, completed_at, docs_checked, errors, warnings, infos, hints`

// CreateRun starts a new check run for the given project root.
func (s *Store) CreateRun(projectRoot string) (*core.Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &core.Run{
		ID:          generateID(),
		ProjectRoot: projectRoot,
		Status:      core.RunStatusRunning,
		StartedAt:   time.Now().UTC(),
	}
	s.logger.Debug("creating run", "id", run.ID, "project_root", projectRoot)

	_, err := s.db.Exec(
		`INSERT INTO runs (id, project_root, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.ProjectRoot, string(run.Status), formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*core.Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run finished with its final status and severity
// totals.
func (s *Store) CompleteRun(id string, status core.RunStatus, counts core.SeverityCounts) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, errors = ?, warnings = ?, infos = ?, hints = ? WHERE id = ?`,
		string(status), formatTime(time.Now()), counts.Errors, counts.Warnings, counts.Infos, counts.Hints, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// SetDocsChecked records how many documents the run covered.
func (s *Store) SetDocsChecked(id string, n int) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if _, err := s.db.Exec(`UPDATE runs SET docs_checked = ? WHERE id = ?`, n, id); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// GetLatestRun returns the most recently started run, or nil when the
// history is empty.
func (s *Store) GetLatestRun() (*core.Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(`SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs newest first, up to limit (everything when limit
// <= 0).
func (s *Store) ListRuns(limit int) ([]*core.Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means no limit
	}

	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*core.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// DeleteOldRuns keeps the newest `keep` runs and deletes the rest, returning
// how many were removed. Diagnostics cascade.
func (s *Store) DeleteOldRuns(keep int) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	if keep < 0 {
		keep = 0
	}

	res, err := s.db.Exec(
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY started_at DESC LIMIT ?)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted runs: %w", err)
	}
	return int(n), nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*core.Run, error) {
	var run core.Run
	var startedAt string
	var completedAt sql.NullString

	err := row.Scan(
		&run.ID, &run.ProjectRoot, &run.Status, &startedAt, &completedAt,
		&run.DocsChecked, &run.Counts.Errors, &run.Counts.Warnings,
		&run.Counts.Infos, &run.Counts.Hints,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return nil, err
		}
		run.CompletedAt = &t
	}
	return &run, nil
}
