package rules

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// rulesFile is the on-disk shape of a rules file:
//
//	types:
//	  report:
//	    required: [institution]
//	    optional: [number]
type rulesFile struct {
	Types map[string]struct {
		Required []string `yaml:"required"`
		Optional []string `yaml:"optional"`
	} `yaml:"types"`
}

// Decode reads rules-file YAML from r. Unknown keys are rejected. An empty
// document yields no extensions.
func Decode(r io.Reader) (map[string]Extension, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f rulesFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]Extension{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	out := make(map[string]Extension, len(f.Types))
	for typ, p := range f.Types {
		out[typ] = Extension{Required: p.Required, Optional: p.Optional}
	}
	return out, nil
}

// LoadFile decodes the rules file at path.
func LoadFile(path string) (map[string]Extension, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules: %w", err)
	}
	defer f.Close()
	exts, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return exts, nil
}
