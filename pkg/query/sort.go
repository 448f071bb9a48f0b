package query

import "strings"

// SortField is a single sort term: a view-level field name and direction.
type SortField struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// ParseSortFields parses a comma-separated sort expression. A "-" prefix
// marks a field as descending. Empty terms are skipped.
func ParseSortFields(expr string) []SortField {
	if expr == "" {
		return nil
	}

	terms := strings.Split(expr, ",")
	fields := make([]SortField, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if strings.HasPrefix(term, "-") {
			fields = append(fields, SortField{Field: term[1:], Descending: true})
		} else {
			fields = append(fields, SortField{Field: term})
		}
	}
	return fields
}
