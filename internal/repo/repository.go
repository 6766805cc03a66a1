package repo

import (
	"context"
	"errors"

	"github.com/hamed0406/healthchecker/internal/domain"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("not found")

// ResultStore keeps completed batches. Implemented by repo/memory and
// repo/postgres.
type ResultStore interface {
	Append(ctx context.Context, b domain.Batch) error
	// Latest returns the most recently finished batch, or ErrNotFound.
	Latest(ctx context.Context) (domain.Batch, error)
	// History returns up to limit outcomes for url, most recently appended
	// first: newest batch first, and within a batch from the last position to
	// the first. limit <= 0 means the store's default.
	History(ctx context.Context, url string, limit int) ([]domain.Outcome, error)
}
