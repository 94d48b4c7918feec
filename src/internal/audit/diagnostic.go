package audit

import (
	"fmt"
	"log/slog"
	"strings"
)

// Kind classifies a Diagnostic.
type Kind int

const (
	// UnrecognizedType: the entry type has no profile; baseline rules applied.
	UnrecognizedType Kind = iota + 1
	// MissingRequired: one or more required fields are absent.
	MissingRequired
	// MissingOptional: one or more optional fields are absent.
	MissingOptional
)

// Diagnostic is one finding about one entry.
type Diagnostic struct {
	Kind    Kind
	EntryID string
	Type    string
	Fields  []string
}

// Level is the log level the diagnostic is reported at.
func (d Diagnostic) Level() slog.Level {
	if d.Kind == MissingRequired {
		return slog.LevelError
	}
	return slog.LevelWarn
}

// Message renders the log line body, e.g.
//
//	a1 : Missing field(s) ['journal', 'pages'].
func (d Diagnostic) Message() string {
	if d.Kind == UnrecognizedType {
		return fmt.Sprintf("No customized entry available for %s!", d.Type)
	}
	return fmt.Sprintf("%s : Missing field(s) %s.", d.EntryID, formatFieldList(d.Fields))
}

func formatFieldList(fields []string) string {
	if len(fields) == 0 {
		return "[]"
	}
	return "['" + strings.Join(fields, "', '") + "']"
}
