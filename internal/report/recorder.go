package report

import (
	"context"
	"fmt"

	"github.com/hamed0406/healthchecker/internal/domain"
	"github.com/hamed0406/healthchecker/internal/repo"
)

// Recorder appends every batch to a result store.
type Recorder struct {
	Store repo.ResultStore
}

func NewRecorder(store repo.ResultStore) *Recorder { return &Recorder{Store: store} }

func (r *Recorder) Report(ctx context.Context, b domain.Batch) error {
	if err := r.Store.Append(ctx, b); err != nil {
		return fmt.Errorf("record batch %s: %w", b.ID, err)
	}
	return nil
}
