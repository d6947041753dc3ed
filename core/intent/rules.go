package intent

import (
	"fmt"
	"os"
	"strings"

	"github.com/siherrmann/eventrag/helper"
	"gopkg.in/yaml.v3"
)

// Rule maps a set of substrings to a filter value.
// Any pattern matching selects the rule.
type Rule struct {
	Patterns []string `yaml:"patterns"`
	Value    string   `yaml:"value"`
}

// RecencyRule maps a set of substrings to a lookback window in days
type RecencyRule struct {
	Patterns []string `yaml:"patterns"`
	Days     int      `yaml:"days"`
}

// Rules is the ordered rule table of the extractor.
// Within each field the first matching rule wins.
type Rules struct {
	Severity []Rule        `yaml:"severity"`
	Category []Rule        `yaml:"category"`
	Location []Rule        `yaml:"location"`
	Recency  []RecencyRule `yaml:"recency"`
}

// DefaultRules returns the built-in rule table
func DefaultRules() Rules {
	return Rules{
		Severity: []Rule{
			{Patterns: []string{"critical"}, Value: "critical"},
			{Patterns: []string{"high"}, Value: "high"},
			{Patterns: []string{"medium"}, Value: "medium"},
			{Patterns: []string{"low"}, Value: "low"},
		},
		Category: []Rule{
			{Patterns: []string{"fire", "smoke"}, Value: "fire safety"},
			{Patterns: []string{"camera", "video"}, Value: "video"},
			{Patterns: []string{"access", "badge", "door"}, Value: "access control"},
			{Patterns: []string{"motion", "unauthorized"}, Value: "security"},
		},
		Location: []Rule{
			{Patterns: []string{"building a"}, Value: "building a"},
			{Patterns: []string{"building b"}, Value: "building b"},
			{Patterns: []string{"building c"}, Value: "building c"},
			{Patterns: []string{"parking"}, Value: "parking"},
			{Patterns: []string{"server room"}, Value: "server room"},
			{Patterns: []string{"lobby"}, Value: "lobby"},
		},
		Recency: []RecencyRule{
			{Patterns: []string{"today"}, Days: 1},
			{Patterns: []string{"yesterday"}, Days: 2},
			{Patterns: []string{"week"}, Days: 7},
			{Patterns: []string{"month"}, Days: 30},
		},
	}
}

// LoadRules reads a rule table from a YAML file.
// Patterns are lowercased, empty patterns and values are rejected.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, helper.NewError("read rules", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, helper.NewError("parse rules", err)
	}

	if err := rules.normalize(); err != nil {
		return Rules{}, helper.NewError("validate rules", err)
	}

	return rules, nil
}

func (r *Rules) normalize() error {
	groups := map[string][]Rule{
		"severity": r.Severity,
		"category": r.Category,
		"location": r.Location,
	}
	for name, rules := range groups {
		for i := range rules {
			if rules[i].Value == "" {
				return fmt.Errorf("%s rule %d has no value", name, i)
			}
			if err := normalizePatterns(rules[i].Patterns); err != nil {
				return fmt.Errorf("%s rule %d: %w", name, i, err)
			}
		}
	}

	for i := range r.Recency {
		if r.Recency[i].Days <= 0 {
			return fmt.Errorf("recency rule %d must have positive days", i)
		}
		if err := normalizePatterns(r.Recency[i].Patterns); err != nil {
			return fmt.Errorf("recency rule %d: %w", i, err)
		}
	}

	return nil
}

func normalizePatterns(patterns []string) error {
	if len(patterns) == 0 {
		return fmt.Errorf("no patterns")
	}
	for i, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			return fmt.Errorf("empty pattern")
		}
		patterns[i] = p
	}
	return nil
}
