package output

// JSON output shapes shared by commands. Kept here so the --format json
// payloads stay consistent across the CLI.

// CheckSummary aggregates findings for a check run.
type CheckSummary struct {
	FilesAnalyzed int `json:"files_analyzed"`
	TotalIssues   int `json:"total_issues"`
	Errors        int `json:"errors"`
	Warnings      int `json:"warnings"`
	Info          int `json:"info"`
	Hints         int `json:"hints"`
}

// CheckDiagnostic is a single finding in machine-readable output.
type CheckDiagnostic struct {
	// Path is set on project-level findings; per-document findings carry
	// their path at the file level instead.
	Path             string `json:"path,omitempty"`
	RuleID           string `json:"rule_id"`
	Severity         string `json:"severity"`
	Message          string `json:"message"`
	Line             int    `json:"line"`
	Column           int    `json:"column"`
	DocumentationURL string `json:"documentation_url,omitempty"`
}

// CheckFileResult groups findings by document.
type CheckFileResult struct {
	Path        string            `json:"path"`
	Diagnostics []CheckDiagnostic `json:"diagnostics"`
}

// CheckOutput is the JSON payload for the check command.
type CheckOutput struct {
	Summary CheckSummary      `json:"summary"`
	Files   []CheckFileResult `json:"files"`
	Project []CheckDiagnostic `json:"project,omitempty"`
}

// TOCEntry is one table-of-contents line in machine-readable output.
type TOCEntry struct {
	Text   string `json:"text"`
	Anchor string `json:"anchor"`
	Level  int    `json:"level"`
}

// TOCDocResult pairs a document with its canonical table of contents.
// Stale reports whether the TOC on disk differs from the canonical one.
type TOCDocResult struct {
	Path    string     `json:"path"`
	Stale   bool       `json:"stale"`
	Entries []TOCEntry `json:"entries"`
}

// SnippetInfo describes one extracted SQL snippet.
type SnippetInfo struct {
	Doc        string `json:"doc"`
	Line       int    `json:"line"`
	Dialect    string `json:"dialect"`
	Statements int    `json:"statements"`
	Lines      int    `json:"lines"`
	Status     string `json:"status,omitempty"`
	Error      string `json:"error,omitempty"`
}

// AssetInfo describes one file under the assets directory.
type AssetInfo struct {
	Path         string   `json:"path"`
	Size         int64    `json:"size"`
	References   int      `json:"references"`
	ReferencedBy []string `json:"referenced_by,omitempty"`
	Orphaned     bool     `json:"orphaned"`
}

// ImportResult summarizes a converted HTML article.
type ImportResult struct {
	Source     string `json:"source"`
	Out        string `json:"out"`
	Title      string `json:"title"`
	Headings   int    `json:"headings"`
	Links      int    `json:"links"`
	Images     int    `json:"images"`
	CodeBlocks int    `json:"code_blocks"`
	Lines      int    `json:"lines"`
}
