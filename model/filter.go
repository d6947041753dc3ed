package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FilterSet is the structured intent extracted from a question.
// Zero values mean the filter is absent.
type FilterSet struct {
	Severity string `json:"severity,omitempty"`
	Category string `json:"category,omitempty"`
	Location string `json:"location,omitempty"`
	Days     int    `json:"time,omitempty"`
}

// HasAny reports whether at least one filter is present
func (f FilterSet) HasAny() bool {
	return f.Severity != "" || f.Category != "" || f.Location != "" || f.Days > 0
}

// Where is a filter expression evaluated by the event index before similarity scoring.
// A leaf compares Field for equality with Value, a conjunction holds its clauses in And.
type Where struct {
	Field string   `json:"field,omitempty"`
	Value string   `json:"value,omitempty"`
	And   []*Where `json:"and,omitempty"`
}

// Eq creates an equality clause
func Eq(field, value string) *Where {
	return &Where{Field: field, Value: value}
}

// AndWhere combines clauses with a logical AND
func AndWhere(clauses ...*Where) *Where {
	return &Where{And: clauses}
}

// Clauses returns all equality leaves of the expression
func (w *Where) Clauses() []*Where {
	if w == nil {
		return nil
	}
	if len(w.And) == 0 {
		return []*Where{w}
	}

	var out []*Where
	for _, c := range w.And {
		out = append(out, c.Clauses()...)
	}
	return out
}

// Containment renders the expression as a JSONB containment document,
// e.g. {"Severity":"critical","Category":"fire safety"} for `metadata @> $1`.
// Returns nil for a nil expression.
func (w *Where) Containment() ([]byte, error) {
	if w == nil {
		return nil, nil
	}

	doc := map[string]string{}
	for _, c := range w.Clauses() {
		if existing, ok := doc[c.Field]; ok && existing != c.Value {
			return nil, fmt.Errorf("conflicting values for field %s: %q and %q", c.Field, existing, c.Value)
		}
		doc[c.Field] = c.Value
	}
	return json.Marshal(doc)
}

// Match evaluates the expression against a metadata record in memory
func (w *Where) Match(meta EventMetadata) bool {
	if w == nil {
		return true
	}
	if len(w.And) > 0 {
		for _, c := range w.And {
			if !c.Match(meta) {
				return false
			}
		}
		return true
	}
	return meta.Field(w.Field) == w.Value
}

func (w *Where) String() string {
	if w == nil {
		return "<none>"
	}
	if len(w.And) == 0 {
		return fmt.Sprintf("%s = %q", w.Field, w.Value)
	}

	parts := make([]string, len(w.And))
	for i, c := range w.And {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}
