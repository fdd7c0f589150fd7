package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-transport-api/internal/api"
	"github.com/99minutos/cargo-transport-api/internal/api/handler"
	"github.com/99minutos/cargo-transport-api/internal/core/ports"
	"github.com/99minutos/cargo-transport-api/internal/core/service"
	mongostore "github.com/99minutos/cargo-transport-api/internal/infrastructure/db/mongo"
	pgstore "github.com/99minutos/cargo-transport-api/internal/infrastructure/db/postgres"
	redisstore "github.com/99minutos/cargo-transport-api/internal/infrastructure/db/redis"
	"github.com/99minutos/cargo-transport-api/internal/infrastructure/password"
	"github.com/99minutos/cargo-transport-api/internal/infrastructure/token"
	"github.com/99minutos/cargo-transport-api/internal/pkg/config"
	"github.com/99minutos/cargo-transport-api/pkg/logger"
)

const (
	serviceName     = "cargo-transport-api"
	shutdownTimeout = 10 * time.Second
)

// storage bundles the repositories of the selected backend.
type storage struct {
	users    ports.AuthRepository
	packages ports.PackageRepository
	ping     handler.HealthCheck
	close    func(context.Context) error
}

// @title                       Cargo Transport API
// @version                     1.0
// @description                 User registration, bearer-token authentication and cargo package reporting.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootstrap.Fatal().Err(err).Msg("error loading configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	codec, err := token.NewJWTCodec(token.Config{
		Secret:     cfg.Auth.JWTSecret,
		Algorithm:  cfg.Auth.Algorithm,
		DefaultTTL: cfg.Auth.TokenTTL(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("error creating token codec")
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("error opening storage")
	}
	log.Info().Str("driver", cfg.StorageDriver).Msg("storage ready")

	checks := map[string]handler.HealthCheck{cfg.StorageDriver: store.ping}

	// The cargo service treats a nil cache as "no caching"; keep the
	// interface nil rather than wrapping a nil *ReportCache.
	var cache ports.ReportCache
	if cfg.Redis.Enabled {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, report cache disabled")
		} else {
			defer rdb.Close()
			cache = redisstore.NewReportCache(rdb, cfg.Redis.ReportTTL)
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}

	authService := service.NewAuthService(
		store.users,
		password.NewBcrypt(cfg.Auth.BcryptCost),
		codec,
		logger.Component("auth_service"),
	)
	cargoService := service.NewCargoService(store.packages, cache, logger.Component("cargo_service"))

	e := api.NewRouter(api.Deps{
		Auth:         authService,
		Cargo:        cargoService,
		Logger:       logger.Component("http"),
		HealthChecks: checks,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error shutting down server")
	}
	if err := store.close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error closing storage")
	}
	log.Info().Msg("server shutdown gracefully")
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := pgstore.Connect(ctx, pgstore.Config{
			DSN:          cfg.Postgres.DSN,
			MaxOpenConns: cfg.Postgres.MaxOpenConns,
		})
		if err != nil {
			return nil, err
		}
		return &storage{
			users:    pgstore.NewUserRepository(db),
			packages: pgstore.NewPackageRepository(db),
			ping:     db.PingContext,
			close:    func(context.Context) error { return db.Close() },
		}, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		users := mongostore.NewUserRepository(db)
		packages := mongostore.NewPackageRepository(db)
		if err := mongostore.EnsureIndexes(ctx, users, packages); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &storage{
			users:    users,
			packages: packages,
			ping:     func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:    client.Disconnect,
		}, nil
	}
}
