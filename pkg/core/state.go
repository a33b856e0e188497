package core

import "time"

// Store defines the interface for check-run state operations.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	// Run operations
	CreateRun(projectRoot string) (*Run, error)
	GetRun(id string) (*Run, error)
	CompleteRun(id string, status RunStatus, counts SeverityCounts) error
	GetLatestRun() (*Run, error)
	ListRuns(limit int) ([]*Run, error)
	DeleteOldRuns(keep int) (int, error)

	// Diagnostic operations
	RecordDiagnostics(runID string, recs []DiagnosticRecord) error
	GetDiagnosticsForRun(runID string) ([]DiagnosticRecord, error)

	// File hash tracking
	GetContentHash(filePath string) (string, error)
	SetContentHash(filePath, hash string) error
	DeleteContentHash(filePath string) error
	ListTrackedFilePaths() ([]string, error)
}

// RunStatus represents the status of a check run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusPassed    RunStatus = "passed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Run represents a single check invocation over a project.
type Run struct {
	ID          string
	ProjectRoot string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	DocsChecked int
	Counts      SeverityCounts
}

// SeverityCounts aggregates diagnostics by severity for a run.
type SeverityCounts struct {
	Errors   int
	Warnings int
	Infos    int
	Hints    int
}

// Total returns the total number of diagnostics across all severities.
func (c SeverityCounts) Total() int {
	return c.Errors + c.Warnings + c.Infos + c.Hints
}

// Add increments the counter matching sev.
func (c *SeverityCounts) Add(sev Severity) {
	switch sev {
	case SeverityError:
		c.Errors++
	case SeverityWarning:
		c.Warnings++
	case SeverityInfo:
		c.Infos++
	case SeverityHint:
		c.Hints++
	}
}

// DiagnosticRecord is a persisted finding tied to a run.
type DiagnosticRecord struct {
	RunID    string
	DocPath  string
	RuleID   string
	Severity string
	Message  string
	Line     int
	Column   int
}
