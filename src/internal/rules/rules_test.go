package rules

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTable(t *testing.T) {
	tests := []struct {
		typ      string
		present  []string
		required []string
		optional []string
	}{
		{"article", nil, []string{"title", "year", "author", "journal", "pages"}, []string{"doi", "issue", "volume"}},
		{"article", []string{"eprint"}, []string{"title", "year", "author", "archiveprefix", "eprint", "url", "urldate"}, []string{"doi", "arxivid"}},
		{"book", nil, []string{"title", "year", "author", "editor", "address"}, []string{"doi"}},
		{"inproceedings", nil, []string{"title", "year", "address", "author", "booktitle", "pages"}, []string{"doi", "editor", "volume"}},
		{"manual", nil, []string{"title", "year", "author"}, []string{"doi"}},
		{"misc", nil, []string{"title", "year", "author"}, []string{"doi"}},
		{"phdthesis", nil, []string{"title", "year", "address", "author", "note", "school"}, []string{"doi"}},
		{"techreport", nil, []string{"title", "year", "institution", "location", "type"}, []string{"doi"}},
		{"thesis", nil, []string{"title", "year", "author", "note", "school"}, []string{"doi"}},
	}
	for _, tt := range tests {
		t.Run(tt.typ+"/"+strings.Join(tt.present, ","), func(t *testing.T) {
			rs, err := Default().Classify(tt.typ, NewFieldSet(tt.present...))
			require.NoError(t, err)
			assert.Equal(t, tt.required, rs.Required())
			assert.Equal(t, tt.optional, rs.Optional())
		})
	}
}

func TestClassifyUnknownFallsBackToBaseline(t *testing.T) {
	rs, err := Default().Classify("report", NewFieldSet("title", "year"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnrecognizedType))
	var ute *UnrecognizedTypeError
	require.True(t, errors.As(err, &ute))
	assert.Equal(t, "report", ute.Type)
	assert.Equal(t, "No customized entry available for report!", err.Error())
	assert.Equal(t, []string{"title", "year"}, rs.Required())
	assert.Equal(t, []string{"doi"}, rs.Optional())
}

func TestClassifyCaseInsensitiveType(t *testing.T) {
	rs, err := Default().Classify("Book", nil)
	require.NoError(t, err)
	assert.Contains(t, rs.Required(), "editor")
}

// allSubsets returns every subset of names.
func allSubsets(names []string) [][]string {
	var out [][]string
	for mask := 0; mask < 1<<len(names); mask++ {
		var s []string
		for i, n := range names {
			if mask&(1<<i) != 0 {
				s = append(s, n)
			}
		}
		out = append(out, s)
	}
	return out
}

func TestArticleBranchProperty(t *testing.T) {
	for _, sub := range allSubsets(PreprintIndicators) {
		present := NewFieldSet(append([]string{"title", "year", "author", "journal"}, sub...)...)
		rs, err := Default().Classify("article", present)
		require.NoError(t, err)
		req := rs.Required()
		if len(sub) > 0 {
			for _, f := range []string{"archiveprefix", "eprint", "url", "urldate"} {
				assert.Contains(t, req, f, "subset %v", sub)
			}
			assert.NotContains(t, req, "journal", "subset %v", sub)
			assert.NotContains(t, req, "pages", "subset %v", sub)
		} else {
			assert.Contains(t, req, "journal")
			assert.Contains(t, req, "pages")
			assert.NotContains(t, req, "archiveprefix")
		}
	}
}

func TestClassifyDisjointAndPure(t *testing.T) {
	reg := Default()
	candidates := append(slices.Clone(PreprintIndicators), "title", "journal", "editor")
	for _, typ := range append(reg.types(), "unknown") {
		for _, sub := range allSubsets(candidates) {
			present := NewFieldSet(sub...)
			a, _ := reg.Classify(typ, present)
			b, _ := reg.Classify(typ, present)
			assert.Equal(t, a, b)
			for _, o := range a.Optional() {
				assert.NotContains(t, a.Required(), o, "type %s", typ)
			}
		}
	}
}

func TestRuleSetAccessorsCopy(t *testing.T) {
	rs, _ := Default().Classify("misc", nil)
	req := rs.Required()
	req[0] = "mutated"
	assert.Equal(t, "title", rs.Required()[0])
	again, _ := Default().Classify("misc", nil)
	assert.Equal(t, "title", again.Required()[0])
}

func TestNewRegistryRejectsOverlap(t *testing.T) {
	_, err := NewRegistry(map[string]Profile{
		"bad": single([]string{"author"}, []string{"author"}),
	})
	require.Error(t, err)
	var oe *OverlapError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "bad", oe.Type)
	assert.Equal(t, "author", oe.Field)

	// overlap with the baseline counts too
	_, err = NewRegistry(map[string]Profile{"bad": single([]string{"doi"}, nil)})
	assert.True(t, errors.Is(err, ErrOverlap))
}

func TestSelectOutOfRangeUsesFirstBranch(t *testing.T) {
	reg, err := NewRegistry(map[string]Profile{
		"odd": {
			Branches: []Extension{{Required: []string{"a"}}},
			Select:   func(FieldSet) int { return 7 },
		},
	})
	require.NoError(t, err)
	rs, err := reg.Classify("odd", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "year", "a"}, rs.Required())
}

func TestExtend(t *testing.T) {
	base := Default()
	reg, err := base.Extend(map[string]Extension{
		"Report":  {Required: []string{" Institution ", "institution"}, Optional: []string{"number"}},
		"article": {Optional: []string{"keywords"}},
	})
	require.NoError(t, err)

	rs, err := reg.Classify("report", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "year", "institution"}, rs.Required())
	assert.Equal(t, []string{"doi", "number"}, rs.Optional())

	journal, _ := reg.Classify("article", nil)
	assert.Equal(t, []string{"doi", "issue", "volume", "keywords"}, journal.Optional())
	preprint, _ := reg.Classify("article", NewFieldSet("eprint"))
	assert.Equal(t, []string{"doi", "arxivid", "keywords"}, preprint.Optional())

	// the receiver is unchanged
	_, err = base.Classify("report", nil)
	assert.True(t, errors.Is(err, ErrUnrecognizedType))
	orig, _ := base.Classify("article", nil)
	assert.NotContains(t, orig.Optional(), "keywords")
}

func TestExtendErrors(t *testing.T) {
	_, err := Default().Extend(map[string]Extension{"misc": {Required: []string{""}}})
	assert.True(t, errors.Is(err, ErrInvalidRules))

	// url is required on the preprint branch only, still an overlap
	_, err = Default().Extend(map[string]Extension{"article": {Optional: []string{"url"}}})
	var oe *OverlapError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "article", oe.Type)
	assert.Equal(t, "url", oe.Field)

	_, err = Default().Extend(map[string]Extension{" ": {Required: []string{"x"}}})
	assert.True(t, errors.Is(err, ErrInvalidRules))
}

func TestDecode(t *testing.T) {
	exts, err := Decode(strings.NewReader(`
types:
  report:
    required: [institution]
    optional: [number]
  misc: {}
`))
	require.NoError(t, err)
	assert.Equal(t, Extension{Required: []string{"institution"}, Optional: []string{"number"}}, exts["report"])
	assert.Contains(t, exts, "misc")

	exts, err = Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, exts)

	_, err = Decode(strings.NewReader("types:\n  report:\n    mandatory: [x]\n"))
	assert.True(t, errors.Is(err, ErrInvalidRules))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("types:\n  report:\n    required: [institution]\n"), 0o644))

	exts, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"institution"}, exts["report"].Required)

	_, err = LoadFile(filepath.Join(dir, "nope.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
