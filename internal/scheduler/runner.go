package scheduler

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/healthchecker/internal/domain"
	"github.com/hamed0406/healthchecker/internal/probe"
)

// Runner probes a list of URLs concurrently.
type Runner struct {
	Checker probe.Checker
	// Concurrency caps probes in flight; 0 launches every probe at once.
	Concurrency int
}

func NewRunner(checker probe.Checker, concurrency int) *Runner {
	if concurrency < 0 {
		concurrency = 0
	}
	return &Runner{Checker: checker, Concurrency: concurrency}
}

// CheckAll returns one outcome per URL, in input order, once every probe has
// finished. Probes are independent: a failure never cancels the others.
func (r *Runner) CheckAll(ctx context.Context, urls []string) []domain.Outcome {
	out := make([]domain.Outcome, len(urls))
	if len(urls) == 0 {
		return out
	}

	var g errgroup.Group
	if r.Concurrency > 0 {
		g.SetLimit(r.Concurrency)
	}
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			out[i] = r.Checker.Check(ctx, u)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
