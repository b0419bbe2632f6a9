package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var envFile string
	flagSet := pflag.NewFlagSet("helpdesk-api", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", "", "dotenv file to load (default: .env, or .env.test when APP_ENV=test)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("parse flags: %v", err)
	}

	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, closeStore, err := persistence.OpenStore(ctx, *cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}

	redis := persistence.NewRedis(cfg.Redis, logger)

	dispatcher := events.NewInMemoryDispatcher()
	service.NewAuditService(dispatcher, logger).RegisterHandlers()

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:     store.Users,
		TokenManager: auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTLMinutes),
		BcryptCost:   cfg.Auth.BcryptCost,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: store.Tickets,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := httptransport.NewServer(httptransport.ServerDependencies{
		Config:        *cfg,
		Logger:        logger,
		Metrics:       observability.NewMetrics(),
		Store:         store,
		Redis:         redis,
		AuthService:   authService,
		TicketService: ticketService,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http": func(ctx context.Context) error {
				logger.Info("shutting down http server")
				return app.ShutdownWithContext(ctx)
			},
			"store": func(ctx context.Context) error {
				if err := closeStore(ctx); err != nil {
					return fmt.Errorf("close %s store: %w", cfg.Store.Driver, err)
				}
				return nil
			},
			"redis": func(context.Context) error {
				redis.Close()
				return nil
			},
		},
	)

	exitCode := <-wait
	logger.Info("exited", zap.Int("code", exitCode))
	_ = logger.Sync()
	os.Exit(exitCode)
}
