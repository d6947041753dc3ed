package intent

import "github.com/siherrmann/eventrag/model"

// Compile converts a filter set into the index pre-filter.
// Only severity and category are exact-match fields of the index, location and
// recency are applied after retrieval. Returns nil when there is nothing to constrain,
// a single clause unwrapped, or an AND of both clauses.
func Compile(filters model.FilterSet) *model.Where {
	var clauses []*model.Where
	if filters.Severity != "" {
		clauses = append(clauses, model.Eq(model.FieldSeverity, filters.Severity))
	}
	if filters.Category != "" {
		clauses = append(clauses, model.Eq(model.FieldCategory, filters.Category))
	}

	switch len(clauses) {
	case 0:
		return nil
	case 1:
		return clauses[0]
	default:
		return model.AndWhere(clauses...)
	}
}
