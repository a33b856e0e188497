// Package dialect provides SQL dialect configuration for snippet checking.
//
// A Dialect describes the lexical surface of a SQL flavor: identifier
// quoting, parameter markers, comment nesting, batch separators, the set of
// keywords that may start a statement, and feature gates for constructs that
// only some dialects accept (TOP, LIMIT, QUALIFY, ...). Concrete dialects are
// registered in builtin.go and looked up by name through the registry.
package dialect

import (
	"sort"
	"strings"
)

// Feature identifies a dialect-specific SQL construct recognized by the
// snippet checker.
type Feature int

const (
	// FeatureTop is the SELECT TOP (n) row limiter.
	FeatureTop Feature = iota
	// FeatureLimit is the LIMIT n clause.
	FeatureLimit
	// FeatureOffsetFetch is OFFSET n ROWS FETCH NEXT n ROWS ONLY.
	FeatureOffsetFetch
	// FeatureQualify is the QUALIFY window-filter clause.
	FeatureQualify
	// FeatureForXML is the FOR XML / FOR JSON output clause.
	FeatureForXML
	// FeatureCrossApply is CROSS APPLY / OUTER APPLY.
	FeatureCrossApply
	// FeatureGroupByAll is the GROUP BY ALL shorthand.
	FeatureGroupByAll
	// FeatureIlike is the case-insensitive ILIKE operator.
	FeatureIlike
	// FeatureTableHints is the WITH (NOLOCK) style table hint syntax.
	FeatureTableHints
)

// String returns the construct as it appears in SQL text.
func (f Feature) String() string {
	switch f {
	case FeatureTop:
		return "TOP"
	case FeatureLimit:
		return "LIMIT"
	case FeatureOffsetFetch:
		return "OFFSET ... FETCH"
	case FeatureQualify:
		return "QUALIFY"
	case FeatureForXML:
		return "FOR XML"
	case FeatureCrossApply:
		return "CROSS APPLY"
	case FeatureGroupByAll:
		return "GROUP BY ALL"
	case FeatureIlike:
		return "ILIKE"
	case FeatureTableHints:
		return "table hints"
	default:
		return "unknown"
	}
}

// QuotePair defines an identifier quoting style, e.g. {'[', ']'} for T-SQL
// bracket identifiers. Closing quotes are escaped by doubling.
type QuotePair struct {
	Open  byte
	Close byte
}

// Dialect represents the lexical configuration of a SQL flavor.
type Dialect struct {
	Name string

	quotes         []QuotePair
	paramMarkers   map[byte]struct{}
	starters       map[string]struct{}
	features       map[Feature]struct{}
	hints          map[Feature]string
	batchSeparator string
	nestedComments bool
	unicodeStrings bool
	dollarStrings  bool
	beginEndBlocks bool
}

// QuoteFor returns the closing quote for an identifier opened with open.
func (d *Dialect) QuoteFor(open byte) (byte, bool) {
	for _, q := range d.quotes {
		if q.Open == open {
			return q.Close, true
		}
	}
	return 0, false
}

// IsParamMarker reports whether b introduces a query parameter (@name, $1, ?).
func (d *Dialect) IsParamMarker(b byte) bool {
	_, ok := d.paramMarkers[b]
	return ok
}

// IsStatementStarter reports whether word may begin a statement.
// Matching is case-insensitive.
func (d *Dialect) IsStatementStarter(word string) bool {
	_, ok := d.starters[strings.ToUpper(word)]
	return ok
}

// StatementStarters returns the sorted statement-starter keywords.
func (d *Dialect) StatementStarters() []string {
	words := make([]string, 0, len(d.starters))
	for w := range d.starters {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Has reports whether the dialect accepts the given construct.
func (d *Dialect) Has(f Feature) bool {
	_, ok := d.features[f]
	return ok
}

// Hint returns dialect-specific advice for a construct the dialect rejects.
// Returns "" when no advice is registered.
func (d *Dialect) Hint(f Feature) string {
	return d.hints[f]
}

// BatchSeparator returns the batch separator keyword ("GO" for T-SQL),
// or "" when the dialect has none. The separator only applies on a line
// of its own.
func (d *Dialect) BatchSeparator() string {
	return d.batchSeparator
}

// AllowsNestedComments reports whether /* */ comments nest.
func (d *Dialect) AllowsNestedComments() bool {
	return d.nestedComments
}

// UnicodeStrings reports whether the dialect accepts the N'...' prefix.
func (d *Dialect) UnicodeStrings() bool {
	return d.unicodeStrings
}

// DollarStrings reports whether the dialect accepts $tag$...$tag$ strings.
func (d *Dialect) DollarStrings() bool {
	return d.dollarStrings
}

// HasBeginEndBlocks reports whether BEGIN starts a statement block that a
// matching END must close (T-SQL). Dialects where BEGIN only opens a
// transaction leave this off.
func (d *Dialect) HasBeginEndBlocks() bool {
	return d.beginEndBlocks
}

// Builder assembles a Dialect. Obtain one with NewDialect; the zero value is
// not usable.
type Builder struct {
	d *Dialect
}

// NewDialect starts building a dialect with the given name.
func NewDialect(name string) *Builder {
	return &Builder{d: &Dialect{
		Name:         name,
		paramMarkers: make(map[byte]struct{}),
		starters:     make(map[string]struct{}),
		features:     make(map[Feature]struct{}),
		hints:        make(map[Feature]string),
	}}
}

// Quotes adds identifier quote pairs.
func (b *Builder) Quotes(pairs ...QuotePair) *Builder {
	b.d.quotes = append(b.d.quotes, pairs...)
	return b
}

// Params adds parameter marker bytes.
func (b *Builder) Params(markers ...byte) *Builder {
	for _, m := range markers {
		b.d.paramMarkers[m] = struct{}{}
	}
	return b
}

// Starters adds statement-starter keywords (stored uppercase).
func (b *Builder) Starters(words ...string) *Builder {
	for _, w := range words {
		b.d.starters[strings.ToUpper(w)] = struct{}{}
	}
	return b
}

// Features marks constructs the dialect accepts.
func (b *Builder) Features(fs ...Feature) *Builder {
	for _, f := range fs {
		b.d.features[f] = struct{}{}
	}
	return b
}

// Hint registers advice shown when a rejected construct appears.
func (b *Builder) Hint(f Feature, advice string) *Builder {
	b.d.hints[f] = advice
	return b
}

// BatchSeparator sets the batch separator keyword.
func (b *Builder) BatchSeparator(word string) *Builder {
	b.d.batchSeparator = strings.ToUpper(word)
	return b
}

// NestedComments enables nesting of block comments.
func (b *Builder) NestedComments() *Builder {
	b.d.nestedComments = true
	return b
}

// UnicodeStrings enables the N'...' string prefix.
func (b *Builder) UnicodeStrings() *Builder {
	b.d.unicodeStrings = true
	return b
}

// DollarStrings enables $tag$...$tag$ strings.
func (b *Builder) DollarStrings() *Builder {
	b.d.dollarStrings = true
	return b
}

// BeginEndBlocks enables BEGIN...END statement-block pairing.
func (b *Builder) BeginEndBlocks() *Builder {
	b.d.beginEndBlocks = true
	return b
}

// Build finalizes the dialect.
func (b *Builder) Build() *Dialect {
	return b.d
}
