package rules

import "slices"

// FieldSet is the set of field names present on an entry.
type FieldSet map[string]struct{}

// NewFieldSet builds a FieldSet from names.
func NewFieldSet(names ...string) FieldSet {
	fs := make(FieldSet, len(names))
	for _, n := range names {
		fs[n] = struct{}{}
	}
	return fs
}

// Has reports whether name is present.
func (fs FieldSet) Has(name string) bool {
	_, ok := fs[name]
	return ok
}

// Missing returns the names not in fs, in the order given.
func (fs FieldSet) Missing(names []string) []string {
	var out []string
	for _, n := range names {
		if !fs.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// RuleSet is the classified field rules for one entry. It is a value: the
// accessors hand out copies.
type RuleSet struct {
	required []string
	optional []string
}

// Required returns the required field names in rule order.
func (rs RuleSet) Required() []string { return slices.Clone(rs.required) }

// Optional returns the optional field names in rule order.
func (rs RuleSet) Optional() []string { return slices.Clone(rs.optional) }

// overlap returns the first field that is both required and optional.
func (rs RuleSet) overlap() (string, bool) {
	for _, o := range rs.optional {
		if slices.Contains(rs.required, o) {
			return o, true
		}
	}
	return "", false
}

// newRuleSet merges extensions in order, keeping the first occurrence of a name.
func newRuleSet(exts ...Extension) RuleSet {
	var rs RuleSet
	for _, e := range exts {
		rs.required = appendUnique(rs.required, e.Required...)
		rs.optional = appendUnique(rs.optional, e.Optional...)
	}
	return rs
}

func appendUnique(dst []string, names ...string) []string {
	for _, n := range names {
		if !slices.Contains(dst, n) {
			dst = append(dst, n)
		}
	}
	return dst
}
