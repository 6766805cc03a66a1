package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/domain"
	"github.com/hamed0406/healthchecker/internal/repo"
)

var (
	_ repo.ResultStore = (*Store)(nil)
	_ repo.AlertStore  = (*Store)(nil)
)

// Schema is applied by EnsureSchema. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS batches (
  id          TEXT PRIMARY KEY,
  started_at  TIMESTAMPTZ NOT NULL,
  finished_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS outcomes (
  id               BIGSERIAL PRIMARY KEY,
  batch_id         TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
  position         INTEGER NOT NULL,
  url              TEXT NOT NULL,
  status           TEXT NOT NULL,
  status_code      INTEGER NULL,
  response_time_ms BIGINT NOT NULL,
  checked_at       TIMESTAMPTZ NOT NULL,
  error            TEXT NULL
);

CREATE INDEX IF NOT EXISTS idx_outcomes_batch    ON outcomes (batch_id, position);
CREATE INDEX IF NOT EXISTS idx_outcomes_url_id   ON outcomes (url, id DESC);
CREATE INDEX IF NOT EXISTS idx_batches_finished  ON batches (finished_at DESC);

CREATE TABLE IF NOT EXISTS alerts (
  url          TEXT PRIMARY KEY,
  last_up      BOOLEAN NOT NULL,
  last_sent_at TIMESTAMPTZ NULL
);
`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// ---- ResultStore ----

// Append writes the batch and its outcomes in one transaction.
func (s *Store) Append(ctx context.Context, b domain.Batch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := &pgx.Batch{}
	q.Queue(`INSERT INTO batches (id, started_at, finished_at) VALUES ($1, $2, $3)`,
		b.ID, b.StartedAt, b.FinishedAt)
	for i, o := range b.Outcomes {
		r := o.Record()
		q.Queue(`INSERT INTO outcomes
		   (batch_id, position, url, status, status_code, response_time_ms, checked_at, error)
		 VALUES
		   ($1, $2, $3, $4, $5, $6, $7, $8)`,
			b.ID, i, r.URL, string(r.Status), r.StatusCode, r.ResponseTimeMS, r.Timestamp, r.Error)
	}
	if err := tx.SendBatch(ctx, q).Close(); err != nil {
		return fmt.Errorf("insert batch %s: %w", b.ID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch %s: %w", b.ID, err)
	}
	s.log.Debug("pg_batch_appended", zap.String("batch_id", b.ID), zap.Int("outcomes", len(b.Outcomes)))
	return nil
}

func (s *Store) Latest(ctx context.Context) (domain.Batch, error) {
	var b domain.Batch
	err := s.pool.QueryRow(ctx,
		`SELECT id, started_at, finished_at
		   FROM batches
		  ORDER BY finished_at DESC
		  LIMIT 1`).Scan(&b.ID, &b.StartedAt, &b.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Batch{}, repo.ErrNotFound
	}
	if err != nil {
		return domain.Batch{}, fmt.Errorf("latest batch: %w", err)
	}
	b.StartedAt = b.StartedAt.UTC()
	b.FinishedAt = b.FinishedAt.UTC()

	rows, err := s.pool.Query(ctx,
		`SELECT url, status, status_code, response_time_ms, checked_at, error
		   FROM outcomes
		  WHERE batch_id = $1
		  ORDER BY position`, b.ID)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("latest outcomes: %w", err)
	}
	b.Outcomes, err = scanOutcomes(rows)
	if err != nil {
		return domain.Batch{}, err
	}
	return b, nil
}

func (s *Store) History(ctx context.Context, url string, limit int) ([]domain.Outcome, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT url, status, status_code, response_time_ms, checked_at, error
		   FROM outcomes
		  WHERE url = $1
		  ORDER BY id DESC
		  LIMIT $2`, url, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return scanOutcomes(rows)
}

func scanOutcomes(rows pgx.Rows) ([]domain.Outcome, error) {
	defer rows.Close()

	out := make([]domain.Outcome, 0)
	for rows.Next() {
		var (
			r      domain.Record
			status string
			code   *int32
		)
		if err := rows.Scan(&r.URL, &status, &code, &r.ResponseTimeMS, &r.Timestamp, &r.Error); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		r.Status = domain.Status(status)
		if code != nil {
			v := int(*code)
			r.StatusCode = &v
		}
		o, err := domain.FromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("stored outcome for %s: %w", r.URL, err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
