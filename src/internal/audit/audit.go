package audit

import "bibinspect/src/internal/rules"

// Audit compares rs with the present fields. It yields at most one
// MissingRequired diagnostic naming every absent required field, and, when
// includeOptional is set, at most one MissingOptional diagnostic likewise.
// Field order follows the rule set.
func Audit(entryID string, rs rules.RuleSet, present rules.FieldSet, includeOptional bool) []Diagnostic {
	var out []Diagnostic
	if missing := present.Missing(rs.Required()); len(missing) > 0 {
		out = append(out, Diagnostic{Kind: MissingRequired, EntryID: entryID, Fields: missing})
	}
	if !includeOptional {
		return out
	}
	if missing := present.Missing(rs.Optional()); len(missing) > 0 {
		out = append(out, Diagnostic{Kind: MissingOptional, EntryID: entryID, Fields: missing})
	}
	return out
}
