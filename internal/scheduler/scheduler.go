package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/domain"
	"github.com/hamed0406/healthchecker/internal/report"
)

const DefaultInterval = 30 * time.Second

type Scheduler struct {
	Logger   *zap.Logger
	Runner   *Runner
	Sink     report.Sink
	URLs     []string
	Interval time.Duration
	Once     bool
}

func NewScheduler(
	logger *zap.Logger,
	runner *Runner,
	sink report.Sink,
	urls []string,
	interval time.Duration,
	once bool,
) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 && !once {
		interval = DefaultInterval
	}
	return &Scheduler{
		Logger:   logger,
		Runner:   runner,
		Sink:     sink,
		URLs:     urls,
		Interval: interval,
		Once:     once,
	}
}

// Run checks every URL, reports the batch, then sleeps Interval before the
// next pass. The sleep starts after reporting, so batches never overlap.
// With Once set it returns nil after the first batch; otherwise it returns
// ctx.Err() once ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if _, err := s.RunOnce(ctx); err != nil {
			return err
		}
		if s.Once {
			return nil
		}

		timer := time.NewTimer(s.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.Logger.Info("scheduler_stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RunOnce probes every URL and delivers the batch to the sink. Sink errors
// are logged, never returned. If ctx is cancelled while probing, the batch
// holds cancellation failures rather than observations: it is discarded
// without reaching the sink and ctx.Err() is returned.
func (s *Scheduler) RunOnce(ctx context.Context) (domain.Batch, error) {
	b := domain.Batch{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	b.Outcomes = s.Runner.CheckAll(ctx, s.URLs)
	b.FinishedAt = time.Now().UTC()

	if err := ctx.Err(); err != nil {
		s.Logger.Info("batch_discarded", zap.String("batch_id", b.ID), zap.Error(err))
		return b, err
	}

	for _, o := range b.Outcomes {
		code, _ := o.StatusCode()
		msg, _ := o.ErrorMessage()
		s.Logger.Debug("probe_checked",
			zap.String("batch_id", b.ID),
			zap.String("url", o.URL()),
			zap.String("status", string(o.Status())),
			zap.Int("status_code", code),
			zap.Int64("response_time_ms", o.ResponseTimeMS()),
			zap.String("error", msg),
		)
	}
	s.Logger.Info("batch_completed",
		zap.String("batch_id", b.ID),
		zap.Int("urls", len(b.Outcomes)),
		zap.Int("up", b.Up()),
		zap.Int("down", b.Down()),
		zap.Duration("took", b.Duration()),
	)

	if s.Sink != nil {
		if err := s.Sink.Report(ctx, b); err != nil {
			s.Logger.Warn("report_error", zap.String("batch_id", b.ID), zap.Error(err))
		}
	}
	return b, nil
}
