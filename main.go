package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travel-agency/cmd"
	"travel-agency/internal/wire"
	"travel-agency/pkg/database"
	"travel-agency/pkg/scheduler"
	"travel-agency/pkg/tracing"
	"travel-agency/pkg/utils"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.Fatal("Application stopped with error", zap.Error(err))
	}
	logger.Info("Application stopped")
}

func run(ctx context.Context, config *utils.Config, logger *zap.Logger) error {
	tp, err := tracing.ConfigureTraceProvider(config.Tracing.JaegerEndpoint)
	if err != nil {
		return err
	}

	rt, err := cmd.Bootstrap(ctx, config, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	applied, err := database.Migrate(ctx, rt.DB)
	if err != nil {
		return err
	}
	logger.Info("Database migrated", zap.Strings("applied", applied))

	jobs := scheduler.New(logger)
	if err := jobs.Add(scheduler.Job{
		Name: "clean-expired-sessions",
		Spec: config.Cron.SessionCleanup,
		Run: func(ctx context.Context) error {
			_, err := rt.Service.Auth.CleanExpiredSessions(ctx)
			return err
		},
	}); err != nil {
		return err
	}
	if err := jobs.Add(scheduler.Job{
		Name:    "reconcile-bookings",
		Spec:    config.Cron.Reconcile,
		Timeout: 10 * time.Minute,
		Run: func(ctx context.Context) error {
			_, _, err := rt.Service.Payment.ReconcileAll(ctx)
			return err
		},
	}); err != nil {
		return err
	}

	// Wire all dependencies
	app := wire.Wiring(rt.Service, rt.DB, config, logger)
	handler := otelhttp.NewHandler(app.Router, "http.server")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		jobs.Start()
		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		jobs.Stop(stopCtx)
		return nil
	})

	g.Go(func() error {
		return cmd.APIServer(ctx, handler, config.App.Port, logger)
	})

	g.Go(func() error {
		<-ctx.Done()
		return tp.Shutdown(context.Background())
	})

	return g.Wait()
}
