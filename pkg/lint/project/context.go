package project

import (
	"sort"

	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/token"
)

// Asset is a non-markdown file under the docs tree together with every
// reference to it. Paths are slash-separated and relative to the docs
// directory, spelled exactly as on disk.
type Asset struct {
	Path string
	Size int64
	Refs []AssetRef
}

// AssetRef is one reference to an asset from a document.
type AssetRef struct {
	// DocPath is the referencing document, relative to the docs directory.
	DocPath string

	// Spelled is the target exactly as written in the document.
	Spelled string

	// Pos is where the reference appears.
	Pos token.Position
}

// Context is the project-wide view rules run against. It is immutable once
// built; internal/project constructs it after loading every document.
type Context struct {
	indexPath string
	docs      map[string]*doc.Document
	docLinks  map[string][]string
	assets    map[string]*Asset
}

// NewContext assembles a project context. docs and assets are keyed by
// slash-separated paths relative to the docs directory; docLinks maps each
// document to the documents it links to, resolved to the same key space.
func NewContext(indexPath string, docs map[string]*doc.Document, docLinks map[string][]string, assets map[string]*Asset) *Context {
	return &Context{
		indexPath: indexPath,
		docs:      docs,
		docLinks:  docLinks,
		assets:    assets,
	}
}

// IndexPath returns the landing document's path relative to the docs
// directory.
func (c *Context) IndexPath() string { return c.indexPath }

// Doc returns the document at the given relative path.
func (c *Context) Doc(path string) (*doc.Document, bool) {
	d, ok := c.docs[path]
	return d, ok
}

// DocPaths returns every document path, sorted.
func (c *Context) DocPaths() []string {
	paths := make([]string, 0, len(c.docs))
	for p := range c.docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// LinksFrom returns the documents the given document links to.
func (c *Context) LinksFrom(path string) []string {
	return c.docLinks[path]
}

// Asset returns the asset at the given relative path.
func (c *Context) Asset(path string) (*Asset, bool) {
	a, ok := c.assets[path]
	return a, ok
}

// AssetPaths returns every asset path, sorted.
func (c *Context) AssetPaths() []string {
	paths := make([]string, 0, len(c.assets))
	for p := range c.assets {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
