package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/healthchecker/internal/domain"
	"github.com/hamed0406/healthchecker/internal/repo"
)

// DefaultRetention is the number of batches kept by New.
const DefaultRetention = 100

// Store keeps the most recent batches and alert state in memory.
type Store struct {
	mu        sync.RWMutex
	retention int
	batches   []domain.Batch
	alerts    map[string]repo.AlertRecord
}

func New() *Store { return NewWithRetention(DefaultRetention) }

func NewWithRetention(n int) *Store {
	if n < 1 {
		n = 1
	}
	return &Store{
		retention: n,
		batches:   make([]domain.Batch, 0, n),
		alerts:    make(map[string]repo.AlertRecord),
	}
}

// ---- ResultStore ----

func (m *Store) Append(ctx context.Context, b domain.Batch) error {
	cp := b
	cp.Outcomes = append([]domain.Outcome(nil), b.Outcomes...)

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.batches) == m.retention {
		copy(m.batches, m.batches[1:])
		m.batches = m.batches[:len(m.batches)-1]
	}
	m.batches = append(m.batches, cp)
	return nil
}

func (m *Store) Latest(ctx context.Context) (domain.Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.batches) == 0 {
		return domain.Batch{}, repo.ErrNotFound
	}
	return m.batches[len(m.batches)-1], nil
}

func (m *Store) History(ctx context.Context, url string, limit int) ([]domain.Outcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Outcome, 0)
	for i := len(m.batches) - 1; i >= 0; i-- {
		outcomes := m.batches[i].Outcomes
		for j := len(outcomes) - 1; j >= 0; j-- {
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
			if outcomes[j].URL() == url {
				out = append(out, outcomes[j])
			}
		}
	}
	return out, nil
}

// ---- AlertStore ----

func (m *Store) Get(ctx context.Context, url string) (*repo.AlertRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.alerts[url]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Store) Set(ctx context.Context, url string, up bool, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.alerts[url]
	rec.URL = url
	rec.LastUp = up
	if !sentAt.IsZero() {
		ts := sentAt
		rec.LastSentAt = &ts
	}
	m.alerts[url] = rec
	return nil
}

var (
	_ repo.ResultStore = (*Store)(nil)
	_ repo.AlertStore  = (*Store)(nil)
)
