// Package app wires the store, gateway, engine and wizard sessions from a
// loaded config.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"goalboard/internal/config"
	"goalboard/internal/db"
	"goalboard/internal/engine"
	"goalboard/internal/gateway"
	"goalboard/internal/migrate"
	"goalboard/internal/observability"
	"goalboard/internal/repo"
	"goalboard/internal/store"
	"goalboard/internal/wizard"
)

type Options struct {
	Workspace string
	// LogOutput defaults to stderr.
	LogOutput io.Writer
	// Registry defaults to a fresh registry with the Go and process collectors.
	Registry *prometheus.Registry
}

type App struct {
	Config   *config.Config
	Store    *store.Store
	Gateway  *gateway.Gateway
	Engine   engine.Engine
	Sessions *wizard.Sessions
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	Log      *slog.Logger

	db *sql.DB
}

// Bootstrap builds an App. With the sqlite driver it opens and migrates the
// workspace database.
func Bootstrap(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: opts.LogOutput,
	})
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	metrics := observability.MustNewMetrics(reg)

	a := &App{
		Config:   cfg,
		Store:    store.New(),
		Sessions: wizard.NewSessionsSize(cfg.Server.MaxSessions),
		Metrics:  metrics,
		Registry: reg,
		Log:      log,
	}
	sink, err := a.openSink(ctx, opts.Workspace)
	if err != nil {
		return nil, err
	}
	a.Gateway = gateway.New(sink, log.With("component", "gateway"), metrics)
	a.Engine = engine.New(a.Store, a.Gateway, metrics, log.With("component", "engine"))
	log.Info("goalboard ready", "gateway", cfg.Gateway.Driver)
	return a, nil
}

func (a *App) openSink(ctx context.Context, workspace string) (gateway.Sink, error) {
	switch a.Config.Gateway.Driver {
	case config.DriverREST:
		return gateway.NewRESTSink(a.Config.Gateway.REST.URL, a.Config.Gateway.REST.APIKey, a.Config.RESTTimeout()), nil
	case config.DriverNone:
		return gateway.Discard{}, nil
	default:
		conn, err := db.Open(db.Config{Workspace: workspace})
		if err != nil {
			return nil, fmt.Errorf("open gateway db: %w", err)
		}
		if err := migrate.Migrate(ctx, conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("migrate gateway db: %w", err)
		}
		a.db = conn
		return repo.Repo{DB: conn}, nil
	}
}

// Close drains pending gateway writes and releases the database.
func (a *App) Close() error {
	if a.Gateway != nil {
		a.Gateway.Wait()
	}
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
