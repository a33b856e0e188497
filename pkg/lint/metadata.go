package lint

import "fmt"

// DocsBaseURL is the base for rule documentation links. Overridable for
// self-hosted documentation mirrors.
var DocsBaseURL = "https://sqldoc.dev/rules"

// BuildDocURL returns the documentation URL for a rule ID.
func BuildDocURL(ruleID string) string {
	return fmt.Sprintf("%s/%s", DocsBaseURL, ruleID)
}

// ImpactLevel estimates how strongly a finding affects readers of the
// published article.
type ImpactLevel int

// Impact levels from least to most severe.
const (
	ImpactLow ImpactLevel = iota
	ImpactMedium
	ImpactHigh
	ImpactCritical
)

// Score returns the 0-100 impact score for the level.
func (l ImpactLevel) Score() int {
	switch l {
	case ImpactLow:
		return 20
	case ImpactMedium:
		return 50
	case ImpactHigh:
		return 70
	case ImpactCritical:
		return 90
	default:
		return 0
	}
}
