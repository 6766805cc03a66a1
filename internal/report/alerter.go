package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/domain"
	"github.com/hamed0406/healthchecker/internal/notify"
	"github.com/hamed0406/healthchecker/internal/probe"
	"github.com/hamed0406/healthchecker/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
}

// Alerter notifies when a URL flips between UP and DOWN.
type Alerter struct {
	Logger   *zap.Logger
	State    repo.AlertStore
	Notifier notify.Notifier
	Config   AlerterConfig

	// Diagnose annotates DOWN alerts that never got a response. Optional.
	Diagnose func(ctx context.Context, host string) probe.DNSStatus

	now func() time.Time
}

func NewAlerter(logger *zap.Logger, state repo.AlertStore, n notify.Notifier, cfg AlerterConfig) *Alerter {
	return &Alerter{
		Logger:   logger,
		State:    state,
		Notifier: n,
		Config:   cfg,
		now:      time.Now,
	}
}

func (a *Alerter) Report(ctx context.Context, b domain.Batch) error {
	var errs error
	for _, o := range b.Outcomes {
		errs = multierr.Append(errs, a.evaluate(ctx, o))
	}
	return errs
}

func (a *Alerter) evaluate(ctx context.Context, o domain.Outcome) error {
	rec, err := a.State.Get(ctx, o.URL())
	if err != nil {
		return fmt.Errorf("alert state %s: %w", o.URL(), err)
	}

	now := a.clock()
	up := o.Up()

	// Has the up/down state changed compared to what we last recorded?
	changed := rec == nil || rec.LastUp != up

	// Cooldown only matters for DOWN alerts (suppresses flapping).
	cooled := true
	if rec != nil && rec.LastSentAt != nil {
		cooled = now.Sub(*rec.LastSentAt) >= a.Config.Cooldown
	}

	downAlert := changed && !up && cooled
	// a URL seen UP for the first time has nothing to recover from
	recoveryAlert := changed && up && rec != nil && a.Config.AlertOnRecovery

	if !downAlert && !recoveryAlert {
		if changed {
			return a.State.Set(ctx, o.URL(), up, time.Time{})
		}
		return nil
	}

	title := "🔴 Target DOWN"
	if up {
		title = "🟢 Target RECOVERED"
	}
	text := a.message(ctx, o)

	alert := notify.Alert{URL: o.URL(), Up: up, Title: title, Text: text}
	if err := a.Notifier.Notify(ctx, alert); err != nil {
		a.Logger.Warn("alert_send_error", zap.String("url", o.URL()), zap.Error(err))
		// keep the old state so the next batch retries the alert
		return fmt.Errorf("send alert for %s: %w", o.URL(), err)
	}
	a.Logger.Info("alert_sent", zap.String("url", o.URL()), zap.Bool("up", up))
	return a.State.Set(ctx, o.URL(), up, now)
}

func (a *Alerter) message(ctx context.Context, o domain.Outcome) string {
	httpTxt := "n/a"
	if code, ok := o.StatusCode(); ok {
		httpTxt = fmt.Sprintf("%d", code)
	}
	reason := "-"
	if msg, ok := o.ErrorMessage(); ok {
		reason = msg
	}

	text := fmt.Sprintf(
		"URL: %s\nHTTP: %s\nLatency: %d ms\nReason: %s\nChecked: %s",
		o.URL(), httpTxt, o.ResponseTimeMS(), reason, o.Timestamp().Format(time.RFC3339),
	)

	if _, hasCode := o.StatusCode(); !o.Up() && !hasCode && a.Diagnose != nil {
		dns := a.Diagnose(ctx, probe.HostOf(o.URL()))
		a.Logger.Info("dns_check",
			zap.String("host", dns.Host),
			zap.String("class", string(dns.Class)),
			zap.Strings("nameservers", dns.Nameservers),
			zap.String("cname", dns.CNAME),
			zap.String("resolver_error", dns.ResolverError),
		)
		text += "\nDNS: " + string(dns.Class)
	}
	return text
}

func (a *Alerter) clock() time.Time {
	if a.now == nil {
		return time.Now()
	}
	return a.now()
}
