// Package rules contains the built-in document lint rules.
//
// Each rule lives in its own file named <id>_<rule_name>.go and registers
// itself from init(), so importing this package (usually as a blank import
// from a command) makes the full rule set available:
//
//	IM01  images.missing-file        referenced image does not exist
//	IM03  images.missing-alt         image has no alt text
//	IM04  images.offsite             image served from outside the project
//	IM05  images.case-mismatch      image path casing differs from disk
//	AN01  anchors.dead               link to a non-existent anchor
//	AN02  anchors.duplicate-heading  repeated heading text shifts anchors
//	AN03  toc.missing-entry          heading absent from table of contents
//	AN04  toc.out-of-order           contents order differs from document
//	LN01  links.dead-file            relative link target does not exist
//	LN02  links.unresolvable         empty, self-referential, or undefined
//	HD01  headings.multiple-h1       more than one top-level heading
//	HD02  headings.level-skip        heading level increases by more than 1
//	CB01  code.missing-language      fenced block has no language tag
//	CB02  code.unterminated-fence    code fence is never closed
//	SQ01  sql.syntax                 SQL snippet fails structural checks
//	SQ02  sql.dialect                SQL snippet uses foreign dialect syntax
//	FM01  frontmatter.missing-title  document has no usable title
//	FM02  frontmatter.invalid        frontmatter fails strict parsing
//
// Orphaned-asset detection (IM02) needs the whole project's reference graph
// and lives with the project rules in pkg/lint/project/rules.
package rules
