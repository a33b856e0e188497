// Package project loads a documentation project from disk: every Markdown
// document under the docs directory, the asset inventory under the assets
// directory, and the cross-document link graph that project-wide rules run
// against. Documents are parsed concurrently; parse failures degrade to
// per-file errors instead of aborting the load.
package project

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sqldoc-labs/sqldoc/internal/linkgraph"
	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	lintproject "github.com/sqldoc-labs/sqldoc/pkg/lint/project"
	"github.com/sqldoc-labs/sqldoc/pkg/token"
)

// Fallbacks for fields left empty in sqldoc.yaml.
const (
	DefaultDocsDir   = "docs"
	DefaultAssetsDir = "img"
	DefaultIndex     = "index.md"
	DefaultDialect   = "tsql"
)

// ParseError records a document that could not be read or parsed.
type ParseError struct {
	Path string // relative to the docs directory
	Err  error
}

// Project is the loaded view of a documentation project. Docs and Assets
// are keyed by slash-separated paths relative to DocsDir.
type Project struct {
	Root      string // absolute project root
	DocsDir   string // absolute docs directory
	AssetsDir string // absolute assets directory
	Index     string // index document, relative to DocsDir
	Dialect   string // default SQL dialect for ```sql blocks

	Docs   map[string]*doc.Document
	Assets map[string]*lintproject.Asset

	// Links maps each document to the documents it links to, resolved to
	// Docs keys and sorted.
	Links map[string][]string

	ParseErrors []ParseError

	logger *slog.Logger
}

// Options configures Load.
type Options struct {
	// Root is the project root directory.
	Root string

	// Config supplies docs/assets/index/dialect settings. Nil uses the
	// defaults throughout.
	Config *core.ProjectConfig

	Logger *slog.Logger
}

// Load walks the docs directory, parses every Markdown document, inventories
// assets, and builds the link graph. Dot-directories and node_modules are
// skipped. The returned project is ready for per-document and project-wide
// analysis.
func Load(ctx context.Context, opts Options) (*Project, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = &core.ProjectConfig{}
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	docsDir := cfg.DocsDir
	if docsDir == "" {
		docsDir = DefaultDocsDir
	}
	if !filepath.IsAbs(docsDir) {
		docsDir = filepath.Join(root, docsDir)
	}
	st, err := os.Stat(docsDir)
	if err != nil {
		return nil, fmt.Errorf("docs directory: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("docs directory %s is not a directory", docsDir)
	}

	assetsRel := cfg.AssetsDir
	if assetsRel == "" {
		assetsRel = DefaultAssetsDir
	}
	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}
	dialect := cfg.Dialect
	if dialect == "" {
		dialect = DefaultDialect
	}

	p := &Project{
		Root:      root,
		DocsDir:   docsDir,
		AssetsDir: filepath.Join(docsDir, filepath.FromSlash(assetsRel)),
		Index:     path.Clean(slashKey(index)),
		Dialect:   dialect,
		Docs:      make(map[string]*doc.Document),
		Assets:    make(map[string]*lintproject.Asset),
		logger:    logger,
	}

	mdPaths, err := p.collectMarkdown()
	if err != nil {
		return nil, err
	}
	if err := p.parseAll(ctx, mdPaths); err != nil {
		return nil, err
	}
	if err := p.collectAssets(); err != nil {
		return nil, err
	}
	p.buildGraph()

	logger.Debug("project loaded",
		"root", root,
		"documents", len(p.Docs),
		"assets", len(p.Assets),
		"parse_errors", len(p.ParseErrors))
	return p, nil
}

// collectMarkdown gathers the *.md files under the docs directory.
func (p *Project) collectMarkdown() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(p.DocsDir, func(fp string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if d.IsDir() {
			if fp != p.DocsDir && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".md") {
			paths = append(paths, fp)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking docs directory: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// parseAll parses documents concurrently, one goroutine per file up to
// GOMAXPROCS. A file that fails to read becomes a ParseError; other files
// still load.
func (p *Project) parseAll(ctx context.Context, paths []string) error {
	var mu sync.Mutex
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))

	for _, fp := range paths {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			rel, err := p.relKey(fp)
			if err != nil {
				return err
			}
			d, err := doc.ParseFile(fp)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.ParseErrors = append(p.ParseErrors, ParseError{Path: rel, Err: err})
				p.logger.Debug("document parse error", "path", rel, "error", err)
				return nil
			}
			p.Docs[rel] = d
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("parsing documents: %w", err)
	}
	sort.Slice(p.ParseErrors, func(i, j int) bool {
		return p.ParseErrors[i].Path < p.ParseErrors[j].Path
	})
	return nil
}

// collectAssets inventories every non-Markdown file under the assets
// directory. A missing assets directory is fine; the project just has no
// assets.
func (p *Project) collectAssets() error {
	st, err := os.Stat(p.AssetsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("assets directory: %w", err)
	}
	if !st.IsDir() {
		return nil
	}

	err = filepath.WalkDir(p.AssetsDir, func(fp string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && fp != p.AssetsDir {
				return filepath.SkipDir
			}
			return nil
		}
		// Dot-files (.gitkeep and friends) are scaffolding, not assets.
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		rel, err := p.relKey(fp)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		p.Assets[rel] = &lintproject.Asset{Path: rel, Size: info.Size()}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking assets directory: %w", err)
	}
	return nil
}

// buildGraph resolves document links into the graph project rules traverse,
// and attaches asset references. Links that leave the docs tree or point at
// nothing loaded are ignored here; per-document rules already flag them.
func (p *Project) buildGraph() {
	p.Links = make(map[string][]string, len(p.Docs))
	for rel, d := range p.Docs {
		seen := make(map[string]bool)
		var targets []string

		for _, l := range d.Links {
			resolved, ok := d.ResolveLink(l)
			if !ok {
				continue
			}
			if key, ok := p.resolveKey(rel, resolved.Path, resolved.Kind, p.Docs); ok {
				if key != rel && !seen[key] {
					seen[key] = true
					targets = append(targets, key)
				}
			}
			p.addAssetRef(rel, resolved.Path, resolved.Kind, resolved.Target, resolved.Pos)
		}
		for _, img := range d.Images {
			p.addAssetRef(rel, img.Path, img.Kind, img.Source, img.Pos)
		}

		sort.Strings(targets)
		p.Links[rel] = targets
	}

	for _, a := range p.Assets {
		sort.Slice(a.Refs, func(i, j int) bool {
			x, y := a.Refs[i], a.Refs[j]
			if x.DocPath != y.DocPath {
				return x.DocPath < y.DocPath
			}
			if x.Pos.Line != y.Pos.Line {
				return x.Pos.Line < y.Pos.Line
			}
			return x.Pos.Column < y.Pos.Column
		})
	}
}

// resolveKey maps a link target to a key of the given map. Exact matches
// win; a case-insensitive match is accepted so the graph survives casing
// slips that the per-document rules report separately.
func (p *Project) resolveKey(fromRel, targetPath string, kind doc.TargetKind, into map[string]*doc.Document) (string, bool) {
	cand, ok := p.candidateKey(fromRel, targetPath, kind)
	if !ok {
		return "", false
	}
	if _, ok := into[cand]; ok {
		return cand, true
	}
	for k := range into {
		if strings.EqualFold(k, cand) {
			return k, true
		}
	}
	return "", false
}

func (p *Project) candidateKey(fromRel, targetPath string, kind doc.TargetKind) (string, bool) {
	if targetPath == "" {
		return "", false
	}
	var cand string
	switch kind {
	case doc.TargetRelative:
		cand = path.Join(path.Dir(fromRel), targetPath)
	case doc.TargetAbsolute:
		cand = strings.TrimPrefix(path.Clean(targetPath), "/")
	default:
		return "", false
	}
	cand = path.Clean(cand)
	if cand == "." || strings.HasPrefix(cand, "../") || cand == ".." {
		return "", false
	}
	return cand, true
}

func (p *Project) addAssetRef(fromRel, targetPath string, kind doc.TargetKind, spelled string, pos token.Position) {
	cand, ok := p.candidateKey(fromRel, targetPath, kind)
	if !ok {
		return
	}
	asset, ok := p.Assets[cand]
	if !ok {
		for k, a := range p.Assets {
			if strings.EqualFold(k, cand) {
				asset = a
				ok = true
				break
			}
		}
	}
	if !ok {
		return
	}
	asset.Refs = append(asset.Refs, lintproject.AssetRef{
		DocPath: fromRel,
		Spelled: spelled,
		Pos:     pos,
	})
}

// relKey converts an absolute path under DocsDir to its slash-separated
// docs-relative key.
func (p *Project) relKey(fp string) (string, error) {
	rel, err := filepath.Rel(p.DocsDir, fp)
	if err != nil {
		return "", fmt.Errorf("relativizing %s: %w", fp, err)
	}
	return filepath.ToSlash(rel), nil
}

func slashKey(s string) string {
	return strings.TrimPrefix(filepath.ToSlash(s), "./")
}

// DocPaths returns the loaded document keys, sorted.
func (p *Project) DocPaths() []string {
	paths := make([]string, 0, len(p.Docs))
	for k := range p.Docs {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return paths
}

// AbsPath returns the absolute path for a docs-relative key.
func (p *Project) AbsPath(rel string) string {
	return filepath.Join(p.DocsDir, filepath.FromSlash(rel))
}

// Context assembles the immutable view that project-wide rules run against.
func (p *Project) Context() *lintproject.Context {
	return lintproject.NewContext(p.Index, p.Docs, p.Links, p.Assets)
}

// Graph builds the cross-link graph over the loaded documents.
func (p *Project) Graph() *linkgraph.Graph {
	g := linkgraph.New()
	for k := range p.Docs {
		g.AddDoc(k)
	}
	for from, targets := range p.Links {
		for _, to := range targets {
			// Both endpoints come from the resolved link table, so the
			// only AddLink failure mode is a stale key; skip it.
			_ = g.AddLink(from, to)
		}
	}
	return g
}

// Stats summarizes the loaded project for reports.
type Stats struct {
	Documents int `json:"documents"`
	Words     int `json:"words"`
	Snippets  int `json:"snippets"`
	Images    int `json:"images"`
	Assets    int `json:"assets"`
	Drafts    int `json:"drafts"`
}

// Stats computes project totals.
func (p *Project) Stats() Stats {
	s := Stats{Documents: len(p.Docs), Assets: len(p.Assets)}
	for _, d := range p.Docs {
		s.Words += d.WordCount()
		s.Snippets += len(d.SQLBlocks())
		s.Images += len(d.Images)
		if d.Frontmatter != nil && d.Frontmatter.Draft {
			s.Drafts++
		}
	}
	return s
}

// ContentHash returns the hex SHA-256 of document content, the form stored
// in the file_hashes table for change detection.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
