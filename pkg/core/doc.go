// Package core defines the shared language of the sqldoc system.
//
// This package contains:
//   - Domain entities (Run, DiagnosticRecord, RuleInfo)
//   - Service interfaces (Store)
//   - Configuration types (ProjectConfig, LintConfig, TargetConfig)
//
// The Golden Rule: pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
