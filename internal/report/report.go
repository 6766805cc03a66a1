// Package report delivers finished batches to their sinks: the terminal, an
// optional JSON file, the result store and the alerter.
package report

import (
	"context"

	"go.uber.org/multierr"

	"github.com/hamed0406/healthchecker/internal/domain"
)

// Sink consumes one batch. Errors are reported back to the scheduler, which
// logs them and carries on.
type Sink interface {
	Report(ctx context.Context, b domain.Batch) error
}

type SinkFunc func(ctx context.Context, b domain.Batch) error

func (f SinkFunc) Report(ctx context.Context, b domain.Batch) error { return f(ctx, b) }

// Multi hands the batch to each sink in order. A failing sink does not stop
// the ones after it; all failures are combined.
type Multi []Sink

func (m Multi) Report(ctx context.Context, b domain.Batch) error {
	var err error
	for _, s := range m {
		if s == nil {
			continue
		}
		err = multierr.Append(err, s.Report(ctx, b))
	}
	return err
}
