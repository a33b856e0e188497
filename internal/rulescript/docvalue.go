package rulescript

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
	"github.com/sqldoc-labs/sqldoc/pkg/token"
)

// DocumentValue exposes a parsed document to Starlark as a read-only struct:
//
//	d.title        document title (frontmatter first, then the first h1)
//	d.path         document path as parsed
//	d.word_count   prose word count
//	d.line_count   total source lines
//	d.headings     structs: level, text, anchor, line
//	d.links        structs: text, target, line
//	d.images       structs: alt, source, line
//	d.snippets     structs: lang, sql, line (fenced SQL blocks only)
func DocumentValue(d *doc.Document) starlark.Value {
	headings := make([]starlark.Value, len(d.Headings))
	for i, h := range d.Headings {
		headings[i] = starlarkstruct.FromStringDict(starlark.String("heading"), starlark.StringDict{
			"level":  starlark.MakeInt(h.Level),
			"text":   starlark.String(h.Text),
			"anchor": starlark.String(h.Anchor),
			"line":   starlark.MakeInt(h.Pos.Line),
		})
	}

	links := make([]starlark.Value, len(d.Links))
	for i, l := range d.Links {
		links[i] = starlarkstruct.FromStringDict(starlark.String("link"), starlark.StringDict{
			"text":   starlark.String(l.Text),
			"target": starlark.String(l.Target),
			"line":   starlark.MakeInt(l.Pos.Line),
		})
	}

	images := make([]starlark.Value, len(d.Images))
	for i, img := range d.Images {
		images[i] = starlarkstruct.FromStringDict(starlark.String("image"), starlark.StringDict{
			"alt":    starlark.String(img.Alt),
			"source": starlark.String(img.Source),
			"line":   starlark.MakeInt(img.Pos.Line),
		})
	}

	sqlBlocks := d.SQLBlocks()
	snippets := make([]starlark.Value, len(sqlBlocks))
	for i, cb := range sqlBlocks {
		snippets[i] = starlarkstruct.FromStringDict(starlark.String("snippet"), starlark.StringDict{
			"lang": starlark.String(cb.Lang),
			"sql":  starlark.String(cb.Content),
			"line": starlark.MakeInt(cb.Pos.Line),
		})
	}

	return starlarkstruct.FromStringDict(starlark.String("document"), starlark.StringDict{
		"title":      starlark.String(d.Title()),
		"path":       starlark.String(d.Path),
		"word_count": starlark.MakeInt(d.WordCount()),
		"line_count": starlark.MakeInt(d.LineCount),
		"headings":   starlark.NewList(headings),
		"links":      starlark.NewList(links),
		"images":     starlark.NewList(images),
		"snippets":   starlark.NewList(snippets),
	})
}

// diagnosticBuiltin implements diagnostic(...). Only message is required;
// line and column default to the document start.
func diagnosticBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		message      string
		line, column int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"message", &message,
		"line?", &line,
		"column?", &column,
	); err != nil {
		return nil, err
	}
	if message == "" {
		return nil, fmt.Errorf("%s: message must not be empty", b.Name())
	}
	return starlarkstruct.FromStringDict(starlark.String("diagnostic"), starlark.StringDict{
		"message": starlark.String(message),
		"line":    starlark.MakeInt(line),
		"column":  starlark.MakeInt(column),
	}), nil
}

// diagnosticsFrom converts a check function's return value: None, or a list
// (or tuple) of diagnostic(...) values.
func diagnosticsFrom(v starlark.Value) ([]lint.Diagnostic, error) {
	if v == starlark.None {
		return nil, nil
	}
	iterable, ok := v.(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("check must return None or a list of diagnostics, got %s", v.Type())
	}

	iter := iterable.Iterate()
	defer iter.Done()

	var out []lint.Diagnostic
	var item starlark.Value
	for iter.Next(&item) {
		diag, err := diagnosticFromValue(item)
		if err != nil {
			return nil, err
		}
		out = append(out, diag)
	}
	return out, nil
}

// diagnosticFromValue converts one diagnostic(...) struct back to Go.
func diagnosticFromValue(v starlark.Value) (lint.Diagnostic, error) {
	s, ok := v.(*starlarkstruct.Struct)
	if !ok || s.Constructor() != starlark.String("diagnostic") {
		return lint.Diagnostic{}, fmt.Errorf("check must return diagnostic(...) values, got %s", v.Type())
	}

	msg, err := attrString(s, "message")
	if err != nil {
		return lint.Diagnostic{}, err
	}
	line, err := attrInt(s, "line")
	if err != nil {
		return lint.Diagnostic{}, err
	}
	column, err := attrInt(s, "column")
	if err != nil {
		return lint.Diagnostic{}, err
	}

	diag := lint.Diagnostic{Message: msg}
	if line > 0 {
		if column < 1 {
			column = 1
		}
		diag.Pos = token.Position{Line: line, Column: column}
	}
	return diag, nil
}

func attrString(s *starlarkstruct.Struct, name string) (string, error) {
	v, err := s.Attr(name)
	if err != nil {
		return "", fmt.Errorf("diagnostic missing %s", name)
	}
	str, ok := starlark.AsString(v)
	if !ok {
		return "", fmt.Errorf("diagnostic %s must be a string, got %s", name, v.Type())
	}
	return str, nil
}

func attrInt(s *starlarkstruct.Struct, name string) (int, error) {
	v, err := s.Attr(name)
	if err != nil {
		return 0, fmt.Errorf("diagnostic missing %s", name)
	}
	i, err := starlark.AsInt32(v)
	if err != nil {
		return 0, fmt.Errorf("diagnostic %s must be an int: %w", name, err)
	}
	return i, nil
}
