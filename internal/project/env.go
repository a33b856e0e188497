package project

import (
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
	"github.com/sqldoc-labs/sqldoc/pkg/token"
)

// Env is the lint environment for a loaded project. File resolution goes to
// the filesystem; anchor lookups are answered from the already-parsed
// documents so a full check never parses a file twice.
type Env struct {
	p  *Project
	fs *lint.FSEnv
}

// NewEnv returns the lint environment for the project.
func NewEnv(p *Project) *Env {
	return &Env{p: p, fs: lint.NewFSEnv(p.Dialect)}
}

// DefaultDialect returns the project's default SQL dialect.
func (e *Env) DefaultDialect() string { return e.p.Dialect }

// ResolveFile resolves target relative to the document's directory.
func (e *Env) ResolveFile(d *doc.Document, target string) (lint.FileInfo, bool) {
	return e.fs.ResolveFile(d, target)
}

// AnchorsIn returns the anchors of the targeted document, preferring the
// in-memory parse over re-reading the file.
func (e *Env) AnchorsIn(d *doc.Document, target string) (map[string]token.Position, bool) {
	if rel, ok := e.docKeyFor(d); ok {
		kind := doc.TargetRelative
		if len(target) > 0 && target[0] == '/' {
			kind = doc.TargetAbsolute
		}
		if key, ok := e.p.resolveKey(rel, target, kind, e.p.Docs); ok {
			return e.p.Docs[key].Anchors(), true
		}
	}
	return e.fs.AnchorsIn(d, target)
}

// docKeyFor maps a document back to its docs-relative key. Documents not
// loaded from this project (LSP overlays, ad-hoc parses) fall through.
func (e *Env) docKeyFor(d *doc.Document) (string, bool) {
	for k, loaded := range e.p.Docs {
		if loaded == d {
			return k, true
		}
	}
	if d.Path != "" {
		if rel, err := e.p.relKey(d.Path); err == nil {
			if _, ok := e.p.Docs[rel]; ok {
				return rel, true
			}
		}
	}
	return "", false
}
