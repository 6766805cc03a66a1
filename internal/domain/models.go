package domain

import "time"

// Batch is the set of outcomes produced by one pass over the URL list.
// Outcomes are in input URL order.
type Batch struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcomes   []Outcome `json:"outcomes"`
}

func (b Batch) Up() int {
	n := 0
	for _, o := range b.Outcomes {
		if o.Up() {
			n++
		}
	}
	return n
}

func (b Batch) Down() int { return len(b.Outcomes) - b.Up() }

// Duration is the wall time the batch took to complete.
func (b Batch) Duration() time.Duration { return b.FinishedAt.Sub(b.StartedAt) }
