package app

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"voicenotes/internal/app/api/summary"
	"voicenotes/internal/app/logging"
	"voicenotes/internal/app/repository"
	"voicenotes/internal/app/repository/pg"
	"voicenotes/internal/app/repository/sqlite"
	"voicenotes/internal/app/summarizer"
	"voicenotes/internal/app/uploader"
	"voicenotes/internal/config"
)

// App bundles the long-lived components shared by the CLI and the server.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	Store        repository.RecordStore
	Client       *summary.Client
	Uploader     *uploader.Service
	Orchestrator *summarizer.Orchestrator
	Registry     *prometheus.Registry
}

func newApp(
	cfg *config.Config,
	logger *zap.Logger,
	store repository.RecordStore,
	client *summary.Client,
	up *uploader.Service,
	orch *summarizer.Orchestrator,
	registry *prometheus.Registry,
) *App {
	return &App{
		Config:       cfg,
		Logger:       logger,
		Store:        store,
		Client:       client,
		Uploader:     up,
		Orchestrator: orch,
		Registry:     registry,
	}
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, err := logging.NewLogger(cfg.Log.Development)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideRecordStore(cfg *config.Config, logger *zap.Logger) (repository.RecordStore, func(), error) {
	store, err := OpenRecordStore(context.Background(), cfg.Store.Driver, cfg.Store.DSN, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close record store", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

// OpenRecordStore opens a sqlite3 or postgres record store and ensures its
// schema. An empty driver means sqlite3.
func OpenRecordStore(ctx context.Context, driver, dsn string, logger *zap.Logger) (repository.RecordStore, error) {
	switch driver {
	case "postgres":
		return pg.Open(ctx, dsn, logger)
	case "sqlite3", "":
		return sqlite.NewSQLiteDB(dsn, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

func provideSummaryClient(cfg *config.Config) *summary.Client {
	return summary.NewClient(summary.Config{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.Timeout,
		CustomHeaders: cfg.API.Headers,
	})
}

func provideRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

func provideMetrics(registry *prometheus.Registry) *summarizer.Metrics {
	return summarizer.NewMetrics(registry)
}

// provideOrchestrator builds the worker. Terminal changes are logged; the
// worker itself is started by the caller.
func provideOrchestrator(
	cfg *config.Config,
	store repository.RecordStore,
	api summary.API,
	up *uploader.Service,
	metrics *summarizer.Metrics,
	logger *zap.Logger,
) (*summarizer.Orchestrator, func()) {
	orch := summarizer.New(store, api, up,
		summarizer.WithLogger(logger),
		summarizer.WithMetrics(metrics),
		summarizer.WithPollAttempts(cfg.Summary.PollAttempts),
		summarizer.WithPollInterval(cfg.Summary.PollInterval),
		summarizer.WithNotifier(func(c summarizer.Change) {
			logger.Info("summary finished",
				zap.Int("record_id", c.Record.ID),
				zap.Int("note_id", c.Record.NoteID),
				zap.String("status", string(c.Status)))
		}),
	)
	return orch, orch.Close
}

var storeSet = wire.NewSet(
	provideRecordStore,
	wire.Bind(new(repository.AudioRecordDAO), new(repository.RecordStore)),
)

var summarySet = wire.NewSet(
	provideSummaryClient,
	wire.Bind(new(summary.API), new(*summary.Client)),
	uploader.NewService,
	provideRegistry,
	provideMetrics,
	provideOrchestrator,
)
