package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedType is wrapped by the soft error Classify returns for a
	// type with no registered profile.
	ErrUnrecognizedType = errors.New("unrecognized entry type")
	// ErrOverlap marks a profile whose required and optional fields intersect.
	ErrOverlap = errors.New("field is both required and optional")
	// ErrInvalidRules marks an unusable rules file.
	ErrInvalidRules = errors.New("invalid rules")
)

// UnrecognizedTypeError names the type that fell back to the baseline rules.
type UnrecognizedTypeError struct {
	Type string
}

func (e *UnrecognizedTypeError) Error() string {
	return fmt.Sprintf("No customized entry available for %s!", e.Type)
}

func (e *UnrecognizedTypeError) Unwrap() error { return ErrUnrecognizedType }

// OverlapError reports the offending type and field.
type OverlapError struct {
	Type  string
	Field string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("profile %q: %s: %q", e.Type, ErrOverlap, e.Field)
}

func (e *OverlapError) Unwrap() error { return ErrOverlap }
