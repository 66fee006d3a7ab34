package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/fieldops/internal/server"
	"github.com/iota-uz/fieldops/modules/jobs"
	"github.com/iota-uz/fieldops/pkg/application"
	"github.com/iota-uz/fieldops/pkg/configuration"
	"github.com/iota-uz/fieldops/pkg/dbpool"
	"github.com/iota-uz/fieldops/pkg/eventbus"
	"github.com/iota-uz/fieldops/pkg/jwtauth"
	"github.com/iota-uz/fieldops/pkg/logging"
	"github.com/iota-uz/fieldops/pkg/metrics"
	"github.com/iota-uz/fieldops/pkg/tenanttx"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		tracingCleanup := logging.SetupTracing(ctx, conf.OpenTelemetry.ServiceName, conf.OpenTelemetry.TempoURL)
		defer tracingCleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to " + conf.OpenTelemetry.TempoURL)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := dbpool.New(connectCtx, dbpool.Options{
		DSN:             conf.Database.Opts,
		MaxConns:        conf.Database.MaxConns,
		MinConns:        conf.Database.MinConns,
		AcquireTimeout:  conf.Database.AcquireTimeout,
		MaxConnLifetime: conf.Database.MaxConnLifetime,
		ConnectTimeout:  conf.Database.ConnectTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	app := application.New(&application.ApplicationOptions{
		Pool:         pool,
		Transactions: tenanttx.NewManager(pool, logger),
		EventBus:     eventbus.NewEventPublisher(logger),
		Logger:       logger,
	})
	if err := application.LoadModules(app, jobs.NewModule(nil)); err != nil {
		return fmt.Errorf("load modules: %w", err)
	}
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path, nil))
	}

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		TokenParser:   jwtauth.NewVerifier(conf.Auth.JWTSecret, conf.Auth.JWTIssuer),
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on: %s", conf.SocketAddress)
		errCh <- serverInstance.Start(conf.SocketAddress)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	defer cancelShutdown()
	if err := serverInstance.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
