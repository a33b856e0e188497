package state

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db), mock
}

func TestCreateRunInsertError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO runs").WillReturnError(assert.AnError)

	_, err := s.CreateRun("/proj")
	assert.ErrorContains(t, err, "failed to create run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteRunUpdateError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("UPDATE runs SET").WillReturnError(assert.AnError)

	err := s.CompleteRun("id", core.RunStatusPassed, core.SeverityCounts{})
	assert.ErrorContains(t, err, "failed to complete run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDiagnosticsRollsBackOnInsertError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO diagnostics").
		ExpectExec().
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := s.RecordDiagnostics("run-1", []core.DiagnosticRecord{
		{DocPath: "a.md", RuleID: "LN01", Severity: "error", Message: "x", Line: 1, Column: 1},
	})
	assert.ErrorContains(t, err, "failed to insert diagnostic")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDiagnosticsCommits(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO diagnostics")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := s.RecordDiagnostics("run-1", []core.DiagnosticRecord{
		{DocPath: "a.md", RuleID: "LN01", Severity: "error", Message: "x", Line: 1, Column: 1},
		{DocPath: "b.md", RuleID: "SQ01", Severity: "warning", Message: "y", Line: 2, Column: 2},
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRunsQueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT .* FROM runs").WillReturnError(assert.AnError)

	_, err := s.ListRuns(5)
	assert.ErrorContains(t, err, "failed to list runs")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetContentHashExecError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO file_hashes").WillReturnError(assert.AnError)

	err := s.SetContentHash("a.md", "h")
	assert.ErrorContains(t, err, "failed to set content hash")
	assert.NoError(t, mock.ExpectationsWereMet())
}
