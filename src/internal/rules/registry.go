package rules

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Registry maps entry type tags to profiles. A Registry is never modified
// after construction and is safe for concurrent use.
type Registry struct {
	profiles map[string]Profile
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(builtinProfiles())
	if err != nil {
		panic(err)
	}
	return r
})

// Default returns the built-in registry.
func Default() *Registry { return defaultRegistry() }

// NewRegistry validates profiles and returns a registry owning a copy of them.
// Every branch of every profile must keep required and optional fields disjoint.
func NewRegistry(profiles map[string]Profile) (*Registry, error) {
	r := &Registry{profiles: make(map[string]Profile, len(profiles))}
	for typ, p := range profiles {
		typ = strings.ToLower(strings.TrimSpace(typ))
		if typ == "" {
			return nil, fmt.Errorf("%w: empty entry type", ErrInvalidRules)
		}
		for _, b := range p.Branches {
			if f, ok := newRuleSet(Baseline, b).overlap(); ok {
				return nil, &OverlapError{Type: typ, Field: f}
			}
		}
		p.Branches = slices.Clone(p.Branches)
		r.profiles[typ] = p
	}
	return r, nil
}

// types returns the registered type tags, sorted.
func (r *Registry) types() []string {
	out := make([]string, 0, len(r.profiles))
	for t := range r.profiles {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the profile registered for typ.
func (r *Registry) Lookup(typ string) (Profile, bool) {
	p, ok := r.profiles[strings.ToLower(strings.TrimSpace(typ))]
	return p, ok
}

// Classify returns the rules for an entry of type typ with the given fields
// present. An unregistered type yields the baseline rules together with an
// *UnrecognizedTypeError; callers treat that error as a warning.
func (r *Registry) Classify(typ string, present FieldSet) (RuleSet, error) {
	p, ok := r.Lookup(typ)
	if !ok {
		return newRuleSet(Baseline), &UnrecognizedTypeError{Type: typ}
	}
	return newRuleSet(Baseline, p.branch(present)), nil
}

// Extend returns a new registry with exts merged in. Fields for a registered
// type are appended to every branch of its profile; an unknown type becomes a
// new single-branch profile. r itself is left untouched.
func (r *Registry) Extend(exts map[string]Extension) (*Registry, error) {
	merged := make(map[string]Profile, len(r.profiles)+len(exts))
	for t, p := range r.profiles {
		merged[t] = p
	}
	for typ, ext := range exts {
		typ = strings.ToLower(strings.TrimSpace(typ))
		ext, err := normalizeExtension(typ, ext)
		if err != nil {
			return nil, err
		}
		p, ok := merged[typ]
		if !ok {
			merged[typ] = Profile{Branches: []Extension{ext}}
			continue
		}
		branches := make([]Extension, 0, len(p.Branches))
		for _, b := range p.Branches {
			branches = append(branches, Extension{
				Required: appendUnique(slices.Clone(b.Required), ext.Required...),
				Optional: appendUnique(slices.Clone(b.Optional), ext.Optional...),
			})
		}
		if len(branches) == 0 {
			branches = append(branches, ext)
		}
		p.Branches = branches
		merged[typ] = p
	}
	return NewRegistry(merged)
}

func normalizeExtension(typ string, ext Extension) (Extension, error) {
	norm := func(names []string) ([]string, error) {
		out := make([]string, 0, len(names))
		for _, n := range names {
			n = strings.ToLower(strings.TrimSpace(n))
			if n == "" {
				return nil, fmt.Errorf("%w: type %q: empty field name", ErrInvalidRules, typ)
			}
			out = appendUnique(out, n)
		}
		return out, nil
	}
	req, err := norm(ext.Required)
	if err != nil {
		return Extension{}, err
	}
	opt, err := norm(ext.Optional)
	if err != nil {
		return Extension{}, err
	}
	return Extension{Required: req, Optional: opt}, nil
}
