package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tuneup/internal/playback"
	"github.com/desertthunder/tuneup/internal/server"
	"github.com/desertthunder/tuneup/internal/services"
	"github.com/desertthunder/tuneup/internal/shared"
	"github.com/desertthunder/tuneup/internal/tasks"
)

// newRegistry returns a registry with the runtime collectors and every package's metrics.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	services.RegisterMetrics(reg)
	tasks.RegisterMetrics(reg)
	server.RegisterMetrics(reg)
	return reg
}

// sessionStore picks Redis when an address is configured, memory otherwise.
func (r *Runner) sessionStore(ctx context.Context) (playback.SessionStore, func(), error) {
	if r.config.Redis.Addr == "" {
		r.logger.Info("keeping playback sessions in memory")
		return playback.NewMemoryStore(), func() {}, nil
	}

	store, err := playback.NewRedisStore(ctx, r.config.Redis)
	if err != nil {
		return nil, nil, err
	}
	r.logger.Info("persisting playback sessions in redis", "addr", r.config.Redis.Addr)
	return store, func() {
		if err := store.Close(); err != nil {
			r.logger.Warn("failed to close redis", "error", err)
		}
	}, nil
}

// Serve runs the REST API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	store, closeStore, err := r.sessionStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer closeStore()

	srv := server.New(server.Deps{
		DB:       db,
		Sessions: playback.NewSessions(store, r.logger),
		Gatherer: newRegistry(),
		Logger:   r.logger,
	})

	if err := srv.ListenAndServe(ctx, cfg.Addr()); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	r.logger.Info("server stopped")
	return nil
}
