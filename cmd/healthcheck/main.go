package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/config"
	"github.com/hamed0406/healthchecker/internal/httpapi"
	"github.com/hamed0406/healthchecker/internal/logging"
	"github.com/hamed0406/healthchecker/internal/notify"
	"github.com/hamed0406/healthchecker/internal/probe"
	"github.com/hamed0406/healthchecker/internal/report"
	"github.com/hamed0406/healthchecker/internal/repo"
	"github.com/hamed0406/healthchecker/internal/repo/memory"
	"github.com/hamed0406/healthchecker/internal/repo/postgres"
	"github.com/hamed0406/healthchecker/internal/scheduler"
)

const (
	exitOK          = 0
	exitSetup       = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], report.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type stores interface {
	repo.ResultStore
	repo.AlertStore
}

func run(ctx context.Context, args []string, terminal func(noColor bool) *report.Terminal, stderr io.Writer) int {
	cfg, err := config.Load(args)
	if config.IsHelp(err) {
		fmt.Fprint(stderr, config.Usage())
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n\n%s", err, config.Usage())
		return exitUsage
	}

	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitSetup
	}
	defer func() { _ = logger.Sync() }()

	var store stores = memory.New()
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("db_connect_error", zap.Error(err))
			return exitSetup
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("db_schema_error", zap.Error(err))
			return exitSetup
		}
		store = pg
	}

	term := terminal(cfg.NoColor)
	sinks := report.Multi{term}
	if cfg.Output != "" {
		sinks = append(sinks, report.NewJSONFile(cfg.Output, term))
	}
	sinks = append(sinks, report.NewRecorder(store))
	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		al := report.NewAlerter(logger, store, slack, report.AlerterConfig{
			AlertOnRecovery: cfg.OnRecovery,
			Cooldown:        cfg.Cooldown,
		})
		al.Diagnose = probe.Diagnose
		sinks = append(sinks, al)
	}

	stopAPI := func() {}
	if cfg.Listen != "" {
		stopAPI, err = serveAPI(logger, cfg.Listen, httpapi.NewServer(logger, store, cfg.URLs))
		if err != nil {
			logger.Error("api_listen_error", zap.String("addr", cfg.Listen), zap.Error(err))
			return exitSetup
		}
	}
	defer stopAPI()

	runner := scheduler.NewRunner(probe.NewHTTPChecker(cfg.Timeout), cfg.Concurrency)
	sch := scheduler.NewScheduler(logger, runner, sinks, cfg.URLs, cfg.IntervalDuration(), cfg.Once)

	term.Banner(cfg.URLs, sch.Interval, cfg.Once, cfg.DefaultURLsUsed)

	if err := sch.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return exitInterrupted
		}
		logger.Error("scheduler_error", zap.Error(err))
		return exitSetup
	}
	return exitOK
}

// serveAPI binds addr up front so a bad address fails setup, then serves in
// the background. The returned func shuts the server down.
func serveAPI(logger *zap.Logger, addr string, api *httpapi.Server) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler:           api.Router(httpapi.DefaultRatePerMin, httpapi.DefaultBurst),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("api_listen", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_serve_error", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("api_shutdown_error", zap.Error(err))
		}
	}, nil
}
