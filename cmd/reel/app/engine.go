package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"github.com/mmcdole/reel/internal/catalog"
	"github.com/mmcdole/reel/internal/config"
	"github.com/mmcdole/reel/internal/coordinator"
	"github.com/mmcdole/reel/internal/logging"
	"github.com/mmcdole/reel/internal/notify"
	"github.com/mmcdole/reel/internal/session"
	"github.com/mmcdole/reel/internal/store"
	"github.com/mmcdole/reel/internal/telemetry"
	"github.com/mmcdole/reel/internal/tmdb"
	"github.com/mmcdole/reel/internal/writer"
)

// engine is the fully wired cache engine plus its collaborators
type engine struct {
	cfg      *config.Config
	cfgMgr   *config.Manager
	logger   *slog.Logger
	session  *session.Manager
	client   *tmdb.Client
	store    *store.MovieStore
	writer   *writer.Serializer
	notifier *notify.Notifier
	coord    *coordinator.Coordinator
	catalog  *catalog.Service

	provider    *telemetry.Provider
	stopMetrics context.CancelFunc
}

// openEngine loads configuration and wires the cache engine.
// observer may be nil.
func openEngine(ctx context.Context, opts *rootOptions, observer coordinator.Observer) (*engine, error) {
	cfgMgr := config.NewManager(opts.configDir)
	cfg, err := cfgMgr.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.debug {
		cfg.Logging.Level = "DEBUG"
	}
	if opts.noCache {
		cfg.Cache.Dir = ""
	}

	logger, err := logging.Setup(cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = logging.Null()
	}
	slog.SetDefault(logger)

	e := &engine{cfg: cfg, cfgMgr: cfgMgr, logger: logger}

	e.session = session.NewManager(cfgMgr, logger)
	if err := e.session.Load(cfg.Session); err != nil {
		logger.Warn("failed to load session", "error", err)
	}

	var provider metric.MeterProvider
	if cfg.Telemetry.MetricsAddr != "" {
		p, err := telemetry.NewPrometheusProvider()
		if err != nil {
			return nil, err
		}
		e.provider = p
		provider = p

		metricsCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		e.stopMetrics = cancel
		go func() {
			if err := telemetry.Serve(metricsCtx, cfg.Telemetry.MetricsAddr, p.Handler(), logger); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	syncMetrics, err := telemetry.NewSyncMetrics(provider)
	if err != nil {
		e.Close()
		return nil, err
	}
	notifyMetrics, err := telemetry.NewNotifyMetrics(provider)
	if err != nil {
		e.Close()
		return nil, err
	}

	e.store, err = store.NewMovieStore(cfg.Cache.Dir, cfg.TMDB.BaseURL, store.WithLogger(logger))
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	e.writer = writer.New(e.store, cfg.Cache.WriterConcurrency, logger)
	e.notifier = notify.New(
		notify.WithQueueSize(cfg.Cache.SubscriberQueue),
		notify.WithLogger(logger),
		notify.WithMetrics(notifyMetrics),
	)
	e.coord = coordinator.New(e.store, e.writer, e.notifier,
		coordinator.WithLogger(logger),
		coordinator.WithSyncMetrics(syncMetrics),
		coordinator.WithObserver(observer),
	)

	e.client = tmdb.NewClient(cfg.TMDB.APIKey, e.session, logger,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithTimeout(cfg.TMDB.Timeout),
	)
	e.catalog = catalog.NewService(e.client, e.session, e.store, e.coord, logger)

	logger.Debug("engine ready", "cached", e.store.Len(), "authorized", e.session.Authorized())
	return e, nil
}

// requireAPIKey fails when no TMDB API key is configured
func (e *engine) requireAPIKey() error {
	if e.cfg.IsConfigured() {
		return nil
	}
	return fmt.Errorf("no TMDB API key configured: set tmdb.api_key in %s or REEL_TMDB_API_KEY", e.cfgMgr.Path())
}

// Close drains pending writes and releases resources
func (e *engine) Close() error {
	var errs []error
	if e.writer != nil {
		e.writer.Close()
	}
	if e.notifier != nil {
		e.notifier.Close()
	}
	if e.store != nil {
		errs = append(errs, e.store.Close())
	}
	if e.stopMetrics != nil {
		e.stopMetrics()
	}
	if e.provider != nil {
		errs = append(errs, e.provider.Shutdown(context.Background()))
	}
	return errors.Join(errs...)
}
