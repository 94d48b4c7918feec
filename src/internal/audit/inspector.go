package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"bibinspect/src/internal/entry"
	"bibinspect/src/internal/rules"
)

// Classifier builds the rule set for an entry type and its present fields.
// *rules.Registry implements it.
type Classifier interface {
	Classify(typ string, present rules.FieldSet) (rules.RuleSet, error)
}

// Inspector runs classification and audit over entries.
type Inspector struct {
	classifier      Classifier
	includeOptional bool
	jobs            int
	logger          *slog.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithOptional enables MissingOptional diagnostics.
func WithOptional(on bool) Option {
	return func(in *Inspector) { in.includeOptional = on }
}

// WithJobs sets how many entries are inspected concurrently. Values below 1
// mean 1.
func WithJobs(n int) Option {
	return func(in *Inspector) {
		if n < 1 {
			n = 1
		}
		in.jobs = n
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(in *Inspector) {
		if l != nil {
			in.logger = l
		}
	}
}

// NewInspector returns an Inspector using c. Defaults: optional fields off,
// one job, logging discarded.
func NewInspector(c Classifier, opts ...Option) *Inspector {
	in := &Inspector{
		classifier: c,
		jobs:       1,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(in)
	}
	return in
}

// InspectEntry classifies and audits a single entry. An unrecognized type
// becomes a leading UnrecognizedType diagnostic; any other classification
// error is returned.
func (in *Inspector) InspectEntry(e entry.Entry) ([]Diagnostic, error) {
	present := rules.NewFieldSet(e.FieldNames()...)
	rs, err := in.classifier.Classify(e.Type, present)
	var out []Diagnostic
	if err != nil {
		var ute *rules.UnrecognizedTypeError
		if !errors.As(err, &ute) {
			return nil, fmt.Errorf("classify %s: %w", e.ID, err)
		}
		out = append(out, Diagnostic{Kind: UnrecognizedType, EntryID: e.ID, Type: ute.Type})
	}
	in.logger.Debug("classified", "id", e.ID, "line", e.Line, "type", e.Type,
		"required", rs.Required(), "optional", rs.Optional())
	return append(out, Audit(e.ID, rs, present, in.includeOptional)...), nil
}

// Inspect inspects entries and returns all diagnostics in entry order,
// regardless of how many jobs ran.
func (in *Inspector) Inspect(ctx context.Context, entries []entry.Entry) ([]Diagnostic, error) {
	results := make([][]Diagnostic, len(entries))
	if in.jobs <= 1 {
		for i, e := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			d, err := in.InspectEntry(e)
			if err != nil {
				return nil, err
			}
			results[i] = d
		}
		return flatten(results), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.jobs)
	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := in.InspectEntry(e)
			if err != nil {
				return err
			}
			results[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return flatten(results), nil
}

func flatten(results [][]Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}
