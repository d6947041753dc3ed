package intent

import (
	"strings"

	"github.com/siherrmann/eventrag/model"
)

// Extractor turns a free-text question into a filter set using an ordered rule table
type Extractor struct {
	rules Rules
}

// NewExtractor creates an extractor for the given rules
func NewExtractor(rules Rules) *Extractor {
	return &Extractor{rules: rules}
}

// Extract derives severity, category, location and recency filters from the question.
// Matching is case-insensitive substring search, the first matching rule per field wins.
// No match at all yields an empty filter set.
// Category values are the cleaned values stored at ingestion, with spaces
// instead of hyphens ("fire safety", "access control").
func (e *Extractor) Extract(question string) model.FilterSet {
	q := strings.ToLower(question)

	filters := model.FilterSet{}
	if rule, ok := firstMatch(q, e.rules.Severity); ok {
		filters.Severity = rule.Value
	}
	if rule, ok := firstMatch(q, e.rules.Category); ok {
		filters.Category = rule.Value
	}
	if rule, ok := firstMatch(q, e.rules.Location); ok {
		filters.Location = rule.Value
	}
	for _, rule := range e.rules.Recency {
		if containsAny(q, rule.Patterns) {
			filters.Days = rule.Days
			break
		}
	}

	return filters
}

// Extract uses the default rule table
func Extract(question string) model.FilterSet {
	return NewExtractor(DefaultRules()).Extract(question)
}

func firstMatch(q string, rules []Rule) (Rule, bool) {
	for _, rule := range rules {
		if containsAny(q, rule.Patterns) {
			return rule, true
		}
	}
	return Rule{}, false
}

func containsAny(q string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(q, p) {
			return true
		}
	}
	return false
}
