// Command api runs the task tracker REST service.
//
//	@title						Task Tracker API
//	@version					1.0
//	@description				Personal task tracking: register, log in, then manage your own tasks.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the session token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	_ "github.com/taskly/task-tracker/docs"
	"github.com/taskly/task-tracker/internal/api"
	"github.com/taskly/task-tracker/internal/api/handler"
	"github.com/taskly/task-tracker/internal/api/middleware"
	"github.com/taskly/task-tracker/internal/core/ports"
	"github.com/taskly/task-tracker/internal/core/service"
	"github.com/taskly/task-tracker/internal/core/validation"
	"github.com/taskly/task-tracker/internal/infrastructure/config"
	"github.com/taskly/task-tracker/internal/infrastructure/db/memory"
	mongostore "github.com/taskly/task-tracker/internal/infrastructure/db/mongo"
	"github.com/taskly/task-tracker/internal/infrastructure/db/postgres"
	redisstore "github.com/taskly/task-tracker/internal/infrastructure/db/redis"
	"github.com/taskly/task-tracker/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log := logger.Init(logger.Options{})
		log.Fatal().Err(err).Msg("task tracker stopped")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "task-tracker",
	})

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	rateLimit := middleware.RateLimitConfig{
		Window:      cfg.RateLimit.Window,
		MaxRequests: cfg.RateLimit.MaxRequests,
	}
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		rateLimit.Store = redisstore.NewRateLimitStore(rdb, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window,
			log.With().Str("component", "ratelimit").Logger())
		st.health["redis"] = handler.PingerFunc(redisstore.Ping(rdb))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("rate limiting backed by redis")
	}

	v := validation.New()
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiresIn)
	authService := service.NewAuthService(
		st.users,
		service.NewBcryptHasher(cfg.Auth.BcryptRounds),
		tokens,
		v,
		log.With().Str("component", "auth").Logger(),
	)
	taskService := service.NewTaskService(st.tasks, v, log.With().Str("component", "tasks").Logger())

	e := api.NewRouter(api.Dependencies{
		AuthService: authService,
		TaskService: taskService,
		Verifier:    tokens,
		Logger:      log,
		APIPrefix:   cfg.APIPrefix,
		CORSOrigins: cfg.CORS.Origins,
		StaticDir:   cfg.StaticDir,
		RateLimit:   rateLimit,
		Health:      st.health,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("store", cfg.Store.Driver).Msg("http server listening")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

type stores struct {
	users  ports.UserRepository
	tasks  ports.TaskRepository
	health map[string]handler.Pinger
	close  func()
}

// openStores connects the configured backend and bootstraps its schema.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, postgres.Config{
			URL:          cfg.Postgres.URL,
			MaxOpenConns: cfg.Postgres.MaxOpenConns,
			MaxIdleConns: cfg.Postgres.MaxIdleConns,
		})
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Msg("connected to postgres")
		return &stores{
			users:  postgres.NewUserRepository(db),
			tasks:  postgres.NewTaskRepository(db),
			health: map[string]handler.Pinger{"postgres": handler.PingerFunc(db.PingContext)},
			close:  func() { _ = db.Close() },
		}, nil

	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
		return &stores{
			users: mongostore.NewUserRepository(db),
			tasks: mongostore.NewTaskRepository(db),
			health: map[string]handler.Pinger{"mongo": handler.PingerFunc(func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			})},
			close: func() { _ = client.Disconnect(context.Background()) },
		}, nil

	default:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return &stores{
			users:  memory.NewUserRepository(),
			tasks:  memory.NewTaskRepository(),
			health: map[string]handler.Pinger{},
			close:  func() {},
		}, nil
	}
}
