package probe

import (
	"context"

	"github.com/hamed0406/healthchecker/internal/domain"
)

// Checker performs a single probe of a target URL. Implementations never
// fail: every call yields an Outcome.
type Checker interface {
	Check(ctx context.Context, target string) domain.Outcome
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(ctx context.Context, target string) domain.Outcome

func (f CheckerFunc) Check(ctx context.Context, target string) domain.Outcome {
	return f(ctx, target)
}
