package audit

import (
	"context"
	"log/slog"
)

// Reporter writes diagnostics to a logger, one record per diagnostic at the
// diagnostic's level.
type Reporter struct {
	logger *slog.Logger
}

// NewReporter returns a Reporter on l, or on slog.Default() when l is nil.
func NewReporter(l *slog.Logger) *Reporter {
	if l == nil {
		l = slog.Default()
	}
	return &Reporter{logger: l}
}

// Report logs diags in order.
func (r *Reporter) Report(ctx context.Context, diags []Diagnostic) {
	for _, d := range diags {
		r.logger.Log(ctx, d.Level(), d.Message())
	}
}
