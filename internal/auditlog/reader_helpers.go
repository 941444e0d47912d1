package auditlog

import "strings"

// buildWhereClause joins conditions into a WHERE clause, or returns an empty
// string when there are none.
func buildWhereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}
