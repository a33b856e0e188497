package lint

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/token"
)

// FSEnv is an Env that answers straight from the filesystem. It serves
// single-file runs (LSP, ad-hoc checks) where no project has been loaded;
// project-backed runs use the cached Env from internal/project.
type FSEnv struct {
	dialect string

	mu      sync.Mutex
	anchors map[string]map[string]token.Position
}

// NewFSEnv creates a filesystem-backed Env with the given default dialect.
func NewFSEnv(defaultDialect string) *FSEnv {
	return &FSEnv{
		dialect: defaultDialect,
		anchors: make(map[string]map[string]token.Position),
	}
}

// DefaultDialect returns the configured default SQL dialect.
func (e *FSEnv) DefaultDialect() string { return e.dialect }

// ResolveFile resolves target relative to the document's directory. Files
// that exist only under different casing resolve with CaseMatches false.
func (e *FSEnv) ResolveFile(d *doc.Document, target string) (FileInfo, bool) {
	resolved, caseOK, ok := e.walk(d, target)
	if !ok {
		return FileInfo{}, false
	}
	fi := FileInfo{
		Path:        resolved,
		ActualName:  filepath.Base(resolved),
		CaseMatches: caseOK,
	}
	if st, err := os.Stat(resolved); err == nil {
		fi.Size = st.Size()
	}
	return fi, true
}

// AnchorsIn parses the markdown document at target and returns its anchors.
// Parsed results are cached per resolved path.
func (e *FSEnv) AnchorsIn(d *doc.Document, target string) (map[string]token.Position, bool) {
	resolved, _, ok := e.walk(d, target)
	if !ok || !strings.EqualFold(filepath.Ext(resolved), ".md") {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if cached, ok := e.anchors[resolved]; ok {
		return cached, true
	}
	parsed, err := doc.ParseFile(resolved)
	if err != nil {
		return nil, false
	}
	anchors := parsed.Anchors()
	e.anchors[resolved] = anchors
	return anchors, true
}

// walk resolves a slash-separated target component by component so that
// case-insensitive near-misses are detected even on filesystems that would
// satisfy them silently.
func (e *FSEnv) walk(d *doc.Document, target string) (resolved string, caseOK bool, ok bool) {
	if target == "" {
		return "", false, false
	}
	cur := filepath.Dir(d.Path)
	caseOK = true
	for _, comp := range strings.Split(path.Clean(target), "/") {
		switch comp {
		case "", ".":
			continue
		case "..":
			cur = filepath.Dir(cur)
			continue
		}
		entries, err := os.ReadDir(cur)
		if err != nil {
			return "", false, false
		}
		name := ""
		for _, ent := range entries {
			if ent.Name() == comp {
				name = ent.Name()
				break
			}
		}
		if name == "" {
			for _, ent := range entries {
				if strings.EqualFold(ent.Name(), comp) {
					name = ent.Name()
					caseOK = false
					break
				}
			}
		}
		if name == "" {
			return "", false, false
		}
		cur = filepath.Join(cur, name)
	}
	return cur, caseOK, true
}
