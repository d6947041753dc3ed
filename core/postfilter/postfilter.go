package postfilter

import (
	"strings"
	"time"

	"github.com/siherrmann/eventrag/model"
)

// Apply narrows candidates by the filters the index could not evaluate.
// Location runs first, then recency, each only when requested.
// The input is not modified.
func Apply(candidates model.Candidates, filters model.FilterSet, now time.Time) model.Candidates {
	out := candidates
	if filters.Location != "" {
		out = ByLocation(out, filters.Location)
	}
	if filters.Days > 0 {
		out = ByRecency(out, filters.Days, now)
	}
	return out
}

// ByLocation keeps candidates whose metadata location contains location, case-insensitively.
// Candidates without a location are dropped.
func ByLocation(candidates model.Candidates, location string) model.Candidates {
	needle := strings.ToLower(location)

	out := make(model.Candidates, 0, len(candidates))
	for _, c := range candidates {
		if c.Metadata.Location == "" {
			continue
		}
		if strings.Contains(strings.ToLower(c.Metadata.Location), needle) {
			out = append(out, c)
		}
	}
	return out
}

// ByRecency keeps candidates at or after now minus days.
// Missing or unparseable timestamps are kept.
func ByRecency(candidates model.Candidates, days int, now time.Time) model.Candidates {
	cutoff := now.AddDate(0, 0, -days)

	out := make(model.Candidates, 0, len(candidates))
	for _, c := range candidates {
		ts, ok := c.Metadata.ParsedTimestamp()
		if !ok || !ts.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out
}
