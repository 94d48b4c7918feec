package rules

// Extension is a declarative added-fields table applied on top of Baseline.
type Extension struct {
	Required []string
	Optional []string
}

// Baseline applies to every entry type, registered or not.
var Baseline = Extension{
	Required: []string{"title", "year"},
	Optional: []string{"doi"},
}

// Profile holds the extension(s) of one entry type. Types with several
// branches carry a Select func that picks a branch from the present fields;
// a nil Select always picks the first.
type Profile struct {
	Branches []Extension
	Select   func(present FieldSet) int
}

func (p Profile) branch(present FieldSet) Extension {
	if len(p.Branches) == 0 {
		return Extension{}
	}
	i := 0
	if p.Select != nil {
		i = p.Select(present)
	}
	if i < 0 || i >= len(p.Branches) {
		i = 0
	}
	return p.Branches[i]
}

func single(required, optional []string) Profile {
	return Profile{Branches: []Extension{{Required: required, Optional: optional}}}
}

const (
	articleJournal = iota
	articlePreprint
)

// PreprintIndicators are the fields whose presence switches an article to the
// preprint branch.
var PreprintIndicators = []string{"archiveprefix", "eprint", "url", "urldate", "arxivid"}

// selectArticle picks the preprint branch when any indicator is present.
func selectArticle(present FieldSet) int {
	if len(present.Missing(PreprintIndicators)) < len(PreprintIndicators) {
		return articlePreprint
	}
	return articleJournal
}

func builtinProfiles() map[string]Profile {
	return map[string]Profile{
		"article": {
			Branches: []Extension{
				articleJournal: {
					Required: []string{"author", "journal", "pages"},
					Optional: []string{"issue", "volume"},
				},
				articlePreprint: {
					Required: []string{"author", "archiveprefix", "eprint", "url", "urldate"},
					Optional: []string{"arxivid"},
				},
			},
			Select: selectArticle,
		},
		"book":          single([]string{"author", "editor", "address"}, nil),
		"inproceedings": single([]string{"address", "author", "booktitle", "pages"}, []string{"editor", "volume"}),
		"manual":        single([]string{"author"}, nil),
		"misc":          single([]string{"author"}, nil),
		"phdthesis":     single([]string{"address", "author", "note", "school"}, nil),
		"techreport":    single([]string{"institution", "location", "type"}, nil),
		"thesis":        single([]string{"author", "note", "school"}, nil),
	}
}
