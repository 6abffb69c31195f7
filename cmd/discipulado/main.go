package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"
	_ "time/tzdata"

	"github.com/alexanderramin/discipulado/internal/cache"
	"github.com/alexanderramin/discipulado/internal/cli"
	"github.com/alexanderramin/discipulado/internal/cli/formatter"
	"github.com/alexanderramin/discipulado/internal/config"
	"github.com/alexanderramin/discipulado/internal/db"
	"github.com/alexanderramin/discipulado/internal/logging"
	"github.com/alexanderramin/discipulado/internal/metrics"
	"github.com/alexanderramin/discipulado/internal/notify"
	"github.com/alexanderramin/discipulado/internal/repository"
	"github.com/alexanderramin/discipulado/internal/service"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("DISCIPULADO_CONFIG"))
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	dialect, err := cfg.Dialect()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	database, err := db.OpenDB(dialect, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories. Queries are written with ? placeholders.
	conn := db.Bind(dialect, database)
	memberRepo := repository.NewSQLMemberRepo(conn)
	caseRepo := repository.NewSQLCaseRepo(conn)
	attemptRepo := repository.NewSQLAttemptRepo(conn)
	moduleRepo := repository.NewSQLModuleRepo(conn)
	progressRepo := repository.NewSQLProgressRepo(conn)
	eventRepo := repository.NewSQLEventRepo(conn)

	uow := db.NewUnitOfWork(database, dialect)

	store, err := openCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()
	events := cache.NewEventSource(eventRepo, store, cfg.Cache.TTL, log)

	metricsObs := metrics.New()
	opts := []service.Option{
		service.WithLocation(loc),
		service.WithLogger(log),
		service.WithObserver(service.NewLogUseCaseObserver(log)),
		service.WithObserver(metricsObs),
	}

	notifier := openNotifier(cfg, log)
	defer notifier.Close()

	app := &cli.App{
		Members:     service.NewMemberService(memberRepo, uow, opts...),
		Cases:       service.NewCaseService(caseRepo, events, uow, opts...),
		Attempts:    service.NewAttemptService(attemptRepo, uow, opts...),
		Modules:     service.NewModuleService(moduleRepo, uow, opts...),
		Enrollments: service.NewEnrollmentService(progressRepo, uow, opts...),
		Confras:     service.NewConfraService(eventRepo, events, uow, opts...),
		Queue:       service.NewQueueService(caseRepo, eventRepo, progressRepo, opts...),

		Notifier:     notifier,
		Log:          log,
		Congregation: cfg.Congregation,
	}

	// Detect interactive terminal for forms and colored output.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	formatter.UseColor(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))

	err = cli.NewRootCmd(app).ExecuteContext(ctx)

	if cfg.Metrics.Textfile != "" {
		if werr := metricsObs.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			log.Warn("writing metrics textfile", zap.String("path", cfg.Metrics.Textfile), zap.Error(werr))
		}
	}
	return err
}

// openCache uses Redis when configured so several operators share one view
// of the active event; otherwise an in-process store.
func openCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.Store, error) {
	if cfg.Cache.RedisURL == "" {
		return cache.NewLocalStore(time.Minute, log), nil
	}
	store, err := cache.NewRedisStore(ctx, cfg.Cache.RedisURL, log)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return store, nil
}

// openNotifier publishes escalations to NATS behind a circuit breaker that
// falls back to the log. Without a NATS URL, or when the broker is down at
// startup, escalations are only logged.
func openNotifier(cfg *config.Config, log *zap.Logger) notify.Notifier {
	fallback := notify.NewLogNotifier(log)
	if cfg.Notify.NATSURL == "" {
		return fallback
	}
	nc, err := notify.NewNATSNotifier(cfg.Notify.NATSURL, cfg.Notify.Subject, log)
	if err != nil {
		log.Warn("nats unavailable, logging escalations instead", zap.Error(err))
		return fallback
	}
	return notify.NewBreakerNotifier(nc, fallback, notify.BreakerSettings{
		MaxFailures: cfg.Notify.BreakerFailures,
		Timeout:     cfg.Notify.BreakerTimeout,
	}, log)
}
