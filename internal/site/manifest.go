package site

import (
	"time"

	"github.com/sqldoc-labs/sqldoc/internal/project"
)

// Manifest describes a build: every published document with its source
// hash, plus project totals. Deploy tooling diffs consecutive manifests to
// decide what to invalidate.
type Manifest struct {
	Title       string        `json:"title"`
	BaseURL     string        `json:"base_url,omitempty"`
	GeneratedAt time.Time     `json:"generated_at"`
	Documents   []ManifestDoc `json:"documents"`
	Stats       project.Stats `json:"stats"`
}

// ManifestDoc is one published document.
type ManifestDoc struct {
	Path     string `json:"path"`   // source, relative to the docs dir
	Output   string `json:"output"` // built page, relative to the out dir
	Title    string `json:"title"`
	Hash     string `json:"hash"` // sha256 of the source
	Words    int    `json:"words"`
	Snippets int    `json:"snippets"`
}

func (b *Builder) buildManifest() *Manifest {
	m := &Manifest{
		Title:       b.opts.Title,
		BaseURL:     b.opts.BaseURL,
		GeneratedAt: time.Now().UTC(),
		Stats:       b.p.Stats(),
	}
	for _, rel := range b.p.DocPaths() {
		d := b.p.Docs[rel]
		if isDraft(d) && rel != b.p.Index {
			continue
		}
		m.Documents = append(m.Documents, ManifestDoc{
			Path:     rel,
			Output:   outputPath(rel),
			Title:    d.Title(),
			Hash:     project.ContentHash(d.Source),
			Words:    d.WordCount(),
			Snippets: len(d.SQLBlocks()),
		})
	}
	return m
}
