package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// CloseFunc releases the resources behind a store.
type CloseFunc func(ctx context.Context) error

// OpenStore connects the backend selected by cfg.Store.Driver and builds its repositories.
func OpenStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.Store, CloseFunc, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		m, err := NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return repository.Store{}, nil, fmt.Errorf("connect mongodb: %w", err)
		}
		if err := repository.EnsureMongoIndexes(ctx, m.DB); err != nil {
			_ = m.Close(context.Background())
			return repository.Store{}, nil, fmt.Errorf("ensure mongodb indexes: %w", err)
		}
		return repository.Store{
			Users:   repository.NewMongoUserRepository(m.DB),
			Tickets: repository.NewMongoTicketRepository(m.DB),
			Pinger:  m.Ping,
		}, m.Close, nil

	case config.StorePostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return repository.Store{}, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return repository.Store{}, nil, err
			}
		}
		return repository.Store{
				Users:   repository.NewPostgresUserRepository(pg.Pool),
				Tickets: repository.NewPostgresTicketRepository(pg.Pool),
				Pinger:  pg.Ping,
			}, func(context.Context) error {
				pg.Close()
				return nil
			}, nil

	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), func(context.Context) error { return nil }, nil
	}
	return repository.Store{}, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
