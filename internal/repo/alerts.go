package repo

import (
	"context"
	"time"
)

// AlertRecord holds last-known state and the last time we sent a notification
// for a URL. LastUp is the last UP/DOWN we saw, LastSentAt is the last time we
// sent a notification (used for cooldown).
type AlertRecord struct {
	URL        string
	LastUp     bool
	LastSentAt *time.Time
}

// AlertStore is implemented by a persistence layer to store alert state.
type AlertStore interface {
	// Get returns nil, nil if there's no record yet.
	Get(ctx context.Context, url string) (*AlertRecord, error)
	// Set upserts the record. If sentAt.IsZero() the previous send time is kept.
	Set(ctx context.Context, url string, up bool, sentAt time.Time) error
}
