package cmd

import (
	"context"
	"fmt"
	"time"

	"travel-agency/internal/data/repository"
	"travel-agency/internal/usecase"
	"travel-agency/pkg/database"
	"travel-agency/pkg/events"
	"travel-agency/pkg/jwt"
	"travel-agency/pkg/utils"

	"go.uber.org/zap"
)

// Runtime holds the long-lived dependencies shared by the API server and
// the ledgerctl tool.
type Runtime struct {
	Config  *utils.Config
	Logger  *zap.Logger
	DB      database.PgxIface
	Repo    *repository.Repository
	Service *usecase.Service

	closers []func() error
}

// Bootstrap connects to the database and the event transport and builds the
// services. Callers must Close the runtime.
func Bootstrap(ctx context.Context, config *utils.Config, logger *zap.Logger) (*Runtime, error) {
	rt := &Runtime{Config: config, Logger: logger}

	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	rt.DB = db
	rt.closers = append(rt.closers, func() error { db.Close(); return nil })

	logger.Info("Database connected successfully")

	pub, closePub, err := events.NewPublisher(config.Redis.Addr, events.NewZapLoggerAdapter(logger))
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("create event publisher: %w", err)
	}
	rt.closers = append(rt.closers, closePub)

	bus, err := events.NewEventBus(pub)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("create event bus: %w", err)
	}

	if config.Redis.Addr == "" {
		logger.Warn("REDIS_ADDR not set, ledger events stay in process")
	}

	rt.Repo = repository.NewRepository(db, logger)
	rt.Service = usecase.NewService(usecase.Deps{
		Repo:      rt.Repo,
		Config:    config,
		Tokens:    jwt.NewService(config.JWT.Secret, time.Duration(config.JWT.ExpiryHours)*time.Hour),
		Publisher: bus,
	}, logger)

	return rt, nil
}

// Close releases resources in reverse order of acquisition.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.Logger.Warn("Failed to close resource", zap.Error(err))
		}
	}
	rt.closers = nil
}
