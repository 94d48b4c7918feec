package entry

import (
	"sort"
	"strings"

	"bibinspect/src/internal/bibtex"
)

// Entry is one bibliography record as seen by the inspector: a type tag, the
// citation key used in diagnostics, the source line, and the names of the
// fields present. Values are dropped; only presence is ever consulted.
type Entry struct {
	Type string
	ID   string
	Line int

	names []string
}

// New builds an Entry, normalising the type tag and field names.
func New(typ, id string, fields map[string]string) Entry {
	names := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for k := range fields {
		k = strings.ToLower(strings.TrimSpace(k))
		if seen[k] {
			continue
		}
		seen[k] = true
		names = append(names, k)
	}
	sort.Strings(names)
	return Entry{
		Type:  strings.ToLower(strings.TrimSpace(typ)),
		ID:    strings.TrimSpace(id),
		names: names,
	}
}

// FromRecords converts parsed BibTeX records into entries, preserving order.
func FromRecords(rs []bibtex.Record) []Entry {
	out := make([]Entry, 0, len(rs))
	for _, r := range rs {
		e := New(r.Type, r.Key, r.Fields)
		e.Line = r.Line
		out = append(out, e)
	}
	return out
}

// FieldNames returns the present field names in sorted order.
func (e Entry) FieldNames() []string {
	return append([]string(nil), e.names...)
}
