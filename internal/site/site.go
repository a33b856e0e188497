// Package site builds the static website for a documentation project:
// every Markdown document rendered to HTML through goldmark, a shared
// layout with navigation, the project's assets, and a manifest.json
// describing the build. The dev server in serve.go rebuilds on change and
// live-reloads connected browsers.
//
// Heading IDs come from the same slugger the linter uses, so anchors that
// check clean also resolve on the published site.
package site

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/sqldoc-labs/sqldoc/internal/project"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
)

// DefaultOutDir is where build output lands when sqldoc.yaml does not say
// otherwise, relative to the project root.
const DefaultOutDir = "_site"

// BuildOptions configures a site build.
type BuildOptions struct {
	// Title is the site title shown in the navigation and page titles.
	Title string

	// OutDir is the output directory. Empty means DefaultOutDir under the
	// project root.
	OutDir string

	// BaseURL is recorded in the manifest for deploy tooling.
	BaseURL string

	// Minify runs the embedded CSS/JS through esbuild minification.
	Minify bool

	// LiveReload injects the reload listener into every page. The dev
	// server turns this on; production builds leave it off.
	LiveReload bool
}

// Site is a rendered site held in memory. Files maps output-relative
// slash paths to content.
type Site struct {
	Files    map[string][]byte
	Manifest *Manifest

	// IndexOutput is the output path of the landing page ("index.html").
	IndexOutput string
}

// Builder renders a loaded project into a Site.
type Builder struct {
	p      *project.Project
	opts   BuildOptions
	logger *slog.Logger
}

// NewBuilder creates a builder for the loaded project.
func NewBuilder(p *project.Project, opts BuildOptions, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Title == "" {
		opts.Title = "sqldoc"
	}
	return &Builder{p: p, opts: opts, logger: logger}
}

// Render produces the whole site in memory: pages, minified assets, copied
// project assets, and the manifest. Draft documents are skipped unless the
// draft is the index itself.
func (b *Builder) Render() (*Site, error) {
	files := make(map[string][]byte)

	css, js, err := buildAssets(b.opts.Minify)
	if err != nil {
		return nil, err
	}
	if b.opts.LiveReload {
		js += liveReloadScript
	}
	files["assets/site.css"] = []byte(css)
	files["assets/site.js"] = []byte(js)

	nav := b.buildNav()
	for _, rel := range b.p.DocPaths() {
		d := b.p.Docs[rel]
		if isDraft(d) && rel != b.p.Index {
			b.logger.Debug("skipping draft", "path", rel)
			continue
		}
		page, err := b.renderPage(rel, d, nav)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", rel, err)
		}
		files[outputPath(rel)] = page
	}

	for _, rel := range sortedKeys(b.p.Assets) {
		data, err := os.ReadFile(b.p.AbsPath(rel))
		if err != nil {
			return nil, fmt.Errorf("reading asset %s: %w", rel, err)
		}
		files[rel] = data
	}

	manifest := b.buildManifest()
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	files["manifest.json"] = append(data, '\n')

	return &Site{
		Files:       files,
		Manifest:    manifest,
		IndexOutput: outputPath(b.p.Index),
	}, nil
}

// Build renders the site and writes it to the output directory. The
// manifest is written atomically so deploy tooling polling it never reads
// a partial file.
func (b *Builder) Build() (*Site, error) {
	site, err := b.Render()
	if err != nil {
		return nil, err
	}

	outDir := b.opts.OutDir
	if outDir == "" {
		outDir = DefaultOutDir
	}
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(b.p.Root, outDir)
	}

	for _, rel := range sortedKeys(site.Files) {
		full := filepath.Join(outDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(full), err)
		}
		if rel == "manifest.json" {
			err = renameio.WriteFile(full, site.Files[rel], 0o644)
		} else {
			err = os.WriteFile(full, site.Files[rel], 0o644)
		}
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", rel, err)
		}
	}

	b.logger.Debug("site built", "out_dir", outDir, "files", len(site.Files))
	return site, nil
}

// outputPath maps a document key to its output page path.
func outputPath(rel string) string {
	return strings.TrimSuffix(rel, path.Ext(rel)) + ".html"
}

func isDraft(d *doc.Document) bool {
	return d.Frontmatter != nil && d.Frontmatter.Draft
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
