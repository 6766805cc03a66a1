package notify

import (
	"context"

	"go.uber.org/multierr"
)

// Alert describes one UP/DOWN transition of a probed URL.
type Alert struct {
	URL   string
	Up    bool
	Title string
	Text  string
}

// Notifier delivers an alert to one channel.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// Multi notifies every channel and returns all failures combined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, a Alert) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Notify(ctx, a))
	}
	return err
}
