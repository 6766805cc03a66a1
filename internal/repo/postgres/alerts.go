package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hamed0406/healthchecker/internal/repo"
)

func (s *Store) Get(ctx context.Context, url string) (*repo.AlertRecord, error) {
	const q = `SELECT last_up, last_sent_at FROM alerts WHERE url=$1`
	r := repo.AlertRecord{URL: url}
	var lastSent *time.Time
	err := s.pool.QueryRow(ctx, q, url).Scan(&r.LastUp, &lastSent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert %s: %w", url, err)
	}
	r.LastSentAt = lastSent
	return &r, nil
}

func (s *Store) Set(ctx context.Context, url string, up bool, sentAt time.Time) error {
	const q = `
		INSERT INTO alerts (url, last_up, last_sent_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (url)
		DO UPDATE SET last_up=EXCLUDED.last_up,
		              last_sent_at=COALESCE(EXCLUDED.last_sent_at, alerts.last_sent_at)
	`
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	if _, err := s.pool.Exec(ctx, q, url, up, ts); err != nil {
		return fmt.Errorf("set alert %s: %w", url, err)
	}
	return nil
}
