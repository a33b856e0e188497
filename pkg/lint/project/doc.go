// Package project provides project-wide lint rules.
//
// Document rules in pkg/lint see one document at a time. Rules here run
// over a Context holding every document plus the link graph and asset
// inventory, so they can answer questions no single document can, such as
// whether a page is reachable from the index at all.
//
// Rules register from init() functions in pkg/lint/project/rules and emit
// the same Diagnostic type as document rules, so callers merge both
// streams with lint.Sort.
package project
