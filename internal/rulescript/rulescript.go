// Package rulescript loads custom lint rules written in Starlark.
//
// A project can drop .star files into its rules directory; each file calls
// rule(...) to declare document rules that run alongside the built-ins. The
// check function receives a read-only document value and returns findings
// built with diagnostic(...):
//
//	def no_select_star(d):
//	    out = []
//	    for s in d.snippets:
//	        if "select *" in s.sql.lower():
//	            out.append(diagnostic(message = "avoid SELECT * in examples", line = s.line))
//	    return out
//
//	rule(
//	    id = "XS01",
//	    name = "custom.no-select-star",
//	    group = "custom",
//	    severity = "warning",
//	    check = no_select_star,
//	)
package rulescript

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"go.starlark.net/starlark"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

// Loader scans a directory for .star files and loads the rules they declare.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a loader for the given rules directory.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{dir: dir, logger: logger}
}

// Load executes every .star file in the rules directory and returns the
// declared rules, ordered by file name. A missing directory is fine; the
// project just has no custom rules.
func (l *Loader) Load() ([]lint.RuleDef, error) {
	info, err := os.Stat(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access rules directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("rules path is not a directory: %s", l.dir)
	}

	files, err := filepath.Glob(filepath.Join(l.dir, "*.star"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan rules directory: %w", err)
	}
	sort.Strings(files)

	var defs []lint.RuleDef
	seen := make(map[string]string)
	for _, file := range files {
		fileDefs, err := l.loadFile(file)
		if err != nil {
			return nil, err
		}
		for _, def := range fileDefs {
			if prev, dup := seen[def.ID]; dup {
				return nil, &LoadError{
					File:    file,
					Message: fmt.Sprintf("rule %s already declared in %s", def.ID, filepath.Base(prev)),
				}
			}
			seen[def.ID] = file
			defs = append(defs, def)
		}
	}
	return defs, nil
}

// loadFile executes a single .star file and collects its rule declarations.
func (l *Loader) loadFile(path string) ([]lint.RuleDef, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from globbing the rules directory
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	c := &collector{file: path, logger: l.logger}
	thread := &starlark.Thread{
		Name: "load:" + filepath.Base(path),
		Print: func(_ *starlark.Thread, msg string) {
			l.logger.Debug("rule script print", slog.String("file", filepath.Base(path)), slog.String("msg", msg))
		},
	}
	predeclared := starlark.StringDict{
		"rule":       starlark.NewBuiltin("rule", c.ruleBuiltin),
		"diagnostic": starlark.NewBuiltin("diagnostic", diagnosticBuiltin),
	}

	if _, err := starlark.ExecFile(thread, path, content, predeclared); err != nil { //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
		return nil, &LoadError{File: path, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}
	return c.defs, nil
}

// collector gathers the rule(...) declarations of one file.
type collector struct {
	file   string
	logger *slog.Logger
	defs   []lint.RuleDef
}

// ruleBuiltin implements the rule(...) declaration.
func (c *collector) ruleBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		id, name, group, severity, description string
		check                                  starlark.Callable
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"id", &id,
		"check", &check,
		"name?", &name,
		"group?", &group,
		"severity?", &severity,
		"description?", &description,
	); err != nil {
		return nil, err
	}

	if id == "" {
		return nil, fmt.Errorf("%s: id must not be empty", b.Name())
	}
	if name == "" {
		name = id
	}
	if group == "" {
		group = "custom"
	}
	sev := core.SeverityWarning
	if severity != "" {
		parsed, ok := core.ParseSeverity(severity)
		if !ok {
			return nil, fmt.Errorf("%s: invalid severity %q (want error, warning, info or hint)", b.Name(), severity)
		}
		sev = parsed
	}

	c.defs = append(c.defs, lint.RuleDef{
		ID:          id,
		Name:        name,
		Group:       group,
		Description: description,
		Severity:    sev,
		Check:       c.checkFunc(id, check),
	})
	return starlark.None, nil
}

// checkFunc wraps a Starlark callable as a lint.CheckFunc. A script failure
// becomes a diagnostic rather than aborting the whole run.
func (c *collector) checkFunc(id string, fn starlark.Callable) lint.CheckFunc {
	file := filepath.Base(c.file)
	logger := c.logger
	return func(d *doc.Document, _ lint.Env, _ map[string]any) []lint.Diagnostic {
		thread := &starlark.Thread{
			Name: "check:" + id,
			Print: func(_ *starlark.Thread, msg string) {
				logger.Debug("rule script print", slog.String("rule", id), slog.String("msg", msg))
			},
		}
		ret, err := starlark.Call(thread, fn, starlark.Tuple{DocumentValue(d)}, nil)
		if err != nil {
			return []lint.Diagnostic{{Message: fmt.Sprintf("rule script %s failed: %v", file, err)}}
		}
		diags, err := diagnosticsFrom(ret)
		if err != nil {
			return []lint.Diagnostic{{Message: fmt.Sprintf("rule script %s: %v", file, err)}}
		}
		return diags
	}
}

// BuildRegistry returns the built-in rule set with the script rules merged
// in. A script rule that reuses a built-in ID replaces it.
func BuildRegistry(defs []lint.RuleDef) *lint.Registry {
	reg := lint.NewRegistry()
	for _, def := range lint.All() {
		reg.Register(def)
	}
	for _, def := range defs {
		reg.Register(def)
	}
	return reg
}

// LoadError reports a failure loading one rule script.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("rules/%s: %s", filepath.Base(e.File), e.Message)
}
