package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/statekit/internal/review"
	"github.com/dmitrymomot/statekit/pkg/logger"
	"github.com/dmitrymomot/statekit/pkg/metrics"
	"github.com/dmitrymomot/statekit/pkg/mongostore"
	"github.com/dmitrymomot/statekit/pkg/pgstore"
	"github.com/dmitrymomot/statekit/pkg/record"
	"github.com/dmitrymomot/statekit/pkg/redisstore"
	"github.com/dmitrymomot/statekit/pkg/rulefile"
	"github.com/dmitrymomot/statekit/pkg/runid"
	"github.com/dmitrymomot/statekit/pkg/statemachine"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// app holds everything a command needs. Commands get it fully set up by the
// root command's pre-run hook.
type app struct {
	cfg     appConfig
	environ map[string]string // parsed instead of the process environment when set
	logOut  io.Writer

	log      *slog.Logger
	registry *prometheus.Registry
	store    review.Store
	health   func(context.Context) error
	pool     *pgxpool.Pool
	svc      *review.Service
	closers  []func(context.Context) error
}

func (a *app) setup(ctx context.Context, flags appConfig) error {
	cfg, err := loadConfig[appConfig](a)
	if err != nil {
		return err
	}
	if flags.Driver != "" {
		cfg.Driver = flags.Driver
	}
	if flags.RulesFile != "" {
		cfg.RulesFile = flags.RulesFile
	}
	if flags.MetricsAddr != "" {
		cfg.MetricsAddr = flags.MetricsAddr
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	a.cfg = cfg

	if a.logOut == nil {
		a.logOut = os.Stderr
	}
	logOpts := []logger.Option{
		logger.WithEnvironment(cfg.Env, "statekit"),
		logger.WithOutput(a.logOut),
		logger.WithContextExtractors(runid.LoggerExtractor()),
	}
	if cfg.LogLevel != "" {
		level, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logOpts = append(logOpts, logger.WithLevel(level))
	}
	a.log = logger.New(logOpts...)

	a.registry = prometheus.NewRegistry()
	observer, err := metrics.NewObserver(a.registry)
	if err != nil {
		return err
	}

	var rules *rulefile.File
	if cfg.RulesFile != "" {
		if rules, err = rulefile.Load(cfg.RulesFile); err != nil {
			return err
		}
	}
	def, err := review.NewDefinition(rules,
		statemachine.WithLogger(a.log),
		statemachine.WithObserver(observer),
	)
	if err != nil {
		return err
	}

	if err := a.openStore(ctx); err != nil {
		return err
	}
	a.svc = review.NewService(a.store, def, a.log)

	if cfg.MetricsAddr != "" {
		if err := a.serveMetrics(cfg.MetricsAddr); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) openStore(ctx context.Context) error {
	log := a.log.With(logger.Driver(a.cfg.Driver))

	switch a.cfg.Driver {
	case driverMemory:
		if a.store == nil {
			a.store = record.NewMemoryStore()
		}
		a.health = func(context.Context) error { return nil }

	case driverPostgres:
		cfg, err := loadConfig[pgstore.Config](a)
		if err != nil {
			return err
		}
		pool, err := pgstore.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		a.pool = pool
		a.store = pgstore.NewStore(pool)
		a.health = pgstore.Healthcheck(pool)
		a.onClose(func(context.Context) error {
			pool.Close()
			return nil
		})

	case driverRedis:
		cfg, err := loadConfig[redisstore.Config](a)
		if err != nil {
			return err
		}
		client, err := redisstore.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		a.store = redisstore.NewStore(client, redisstore.WithConfig(cfg))
		a.health = redisstore.Healthcheck(client)
		a.onClose(func(context.Context) error { return client.Close() })

	case driverMongo:
		cfg, err := loadConfig[mongostore.Config](a)
		if err != nil {
			return err
		}
		coll, err := mongostore.ConnectCollection(ctx, cfg)
		if err != nil {
			return err
		}
		client := coll.Database().Client()
		a.store = mongostore.NewStore(coll)
		a.health = mongostore.Healthcheck(client)
		a.onClose(client.Disconnect)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, a.cfg.Driver)
	}

	log.DebugContext(ctx, "record store ready")
	return nil
}

func (a *app) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}

	srv := &http.Server{
		Handler:           metrics.Handler(a.registry),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server stopped", logger.Error(err))
		}
	}()
	a.log.Info("serving metrics", slog.String("addr", ln.Addr().String()))

	a.onClose(srv.Shutdown)
	return nil
}

func (a *app) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// close releases resources in reverse order of acquisition.
func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
