package site

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/sqldoc-labs/sqldoc/pkg/doc"
)

// pageTemplate is the shared layout. Root is the relative prefix back to
// the site root ("" at the top level, "../" per directory down), so pages
// work from any depth without a configured base URL.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}{{if ne .Title .SiteTitle}} · {{.SiteTitle}}{{end}}</title>
<link rel="stylesheet" href="{{.Root}}assets/site.css">
</head>
<body>
<div class="layout">
<nav class="sidebar">
<p class="site-title"><a href="{{.Root}}{{.IndexHref}}">{{.SiteTitle}}</a></p>
<ul class="nav-docs">
{{- range .Nav}}
<li{{if .Current}} class="current"{{end}}><a href="{{$.Root}}{{.Href}}">{{.Title}}</a>
{{- if and .Current .Sections}}
<ul class="nav-sections">
{{- range .Sections}}
<li class="level-{{.Level}}"><a href="#{{.Anchor}}">{{.Title}}</a></li>
{{- end}}
</ul>
{{- end}}
</li>
{{- end}}
</ul>
</nav>
<main class="content">
{{.Content}}
</main>
</div>
<script src="{{.Root}}assets/site.js"></script>
</body>
</html>
`

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

type pageData struct {
	SiteTitle string
	Title     string
	Root      string
	IndexHref string
	Nav       []navItem
	Content   template.HTML
}

type navItem struct {
	Title    string
	Href     string
	Current  bool
	Sections []navSection
}

type navSection struct {
	Title  string
	Anchor string
	Level  int
}

// buildNav lists every published document, index first, the rest in path
// order. Section entries are filled in per page.
func (b *Builder) buildNav() []navItem {
	var items []navItem
	for _, rel := range b.p.DocPaths() {
		d := b.p.Docs[rel]
		if isDraft(d) && rel != b.p.Index {
			continue
		}
		title := d.Title()
		if title == "" {
			title = rel
		}
		item := navItem{Title: title, Href: outputPath(rel)}
		if rel == b.p.Index {
			items = append([]navItem{item}, items...)
			continue
		}
		items = append(items, item)
	}
	return items
}

// renderPage renders one document into the full page layout.
func (b *Builder) renderPage(rel string, d *doc.Document, nav []navItem) ([]byte, error) {
	body, err := renderMarkdown(d)
	if err != nil {
		return nil, err
	}

	out := outputPath(rel)
	pageNav := make([]navItem, len(nav))
	copy(pageNav, nav)
	for i := range pageNav {
		if pageNav[i].Href != out {
			continue
		}
		pageNav[i].Current = true
		for _, e := range doc.TOCForHeadings(d, 0, 0) {
			pageNav[i].Sections = append(pageNav[i].Sections, navSection{
				Title:  e.Text,
				Anchor: e.Anchor,
				Level:  e.Level,
			})
		}
	}

	title := d.Title()
	if title == "" {
		title = b.opts.Title
	}

	data := pageData{
		SiteTitle: b.opts.Title,
		Title:     title,
		Root:      strings.Repeat("../", strings.Count(out, "/")),
		IndexHref: outputPath(b.p.Index),
		Nav:       pageNav,
		Content:   template.HTML(body), //nolint:gosec // G203: rendered from trusted project sources
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing page template: %w", err)
	}
	return buf.Bytes(), nil
}
