package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/vadimbarashkov/shortlink/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/shortlink/internal/adapter/repository/rediscache"
	"github.com/vadimbarashkov/shortlink/internal/adapter/repository/sqldb"
	"github.com/vadimbarashkov/shortlink/internal/config"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
	"github.com/vadimbarashkov/shortlink/pkg/database"

	delivery "github.com/vadimbarashkov/shortlink/internal/adapter/delivery/http"
)

const (
	shutdownTimeout  = 10 * time.Second
	redisPingTimeout = 2 * time.Second
)

type linkRepository interface {
	Save(ctx context.Context, longURL, shortCode string) (*entity.Link, error)
	RetrieveByLongURL(ctx context.Context, longURL string) (*entity.Link, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.Link, error)
}

// Run serves the shortener until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	linkRepo, closeRepo, err := newLinkRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer closeRepo()

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		cache := rediscache.New(linkRepo, client, cfg.Redis.TTL, logger.Logger)

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		if err := cache.Ping(pingCtx); err != nil {
			logger.WarnContext(ctx, "redis is unreachable, lookups go to the database",
				slog.String("addr", cfg.Redis.Addr), slog.Any("err", err))
		}
		cancel()

		linkRepo = cache
	}

	codeGen, err := usecase.NewNanoIDGenerator(cfg.ShortCodeLength)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	linkUseCase := usecase.New(linkRepo, codeGen, usecase.WithMaxAttempts(cfg.MaxAttempts))

	opts := delivery.Options{
		Scheme:         cfg.ShortLink.Scheme,
		BaseURL:        cfg.ShortLink.BaseURL,
		MaxBodyBytes:   cfg.HTTPServer.MaxBodyBytes,
		StrictURLs:     cfg.StrictURLs,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}
	if cfg.Docs.Enabled {
		opts.DocsSpecPath = cfg.Docs.SpecPath
	}

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        delivery.NewRouter(logger, linkUseCase, opts),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(ctx, "starting server",
			slog.String("addr", server.Addr),
			slog.String("env", cfg.Env),
			slog.String("driver", cfg.Database.Driver))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

// newLinkRepository opens the configured store. The returned func releases it.
func newLinkRepository(ctx context.Context, cfg *config.Config) (linkRepository, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		return memory.NewLinkRepository(), func() {}, nil
	}

	driverName, dsn := cfg.Database.DriverName(), cfg.DSN()

	if err := database.RunMigrations(driverName, dsn); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := database.New(
		ctx,
		driverName,
		dsn,
		database.WithConnMaxIdleTime(cfg.Database.ConnMaxIdleTime),
		database.WithConnMaxLifetime(cfg.Database.ConnMaxLifetime),
		database.WithMaxIdleConns(cfg.Database.MaxIdleConns),
		database.WithMaxOpenConns(cfg.Database.MaxOpenConns),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return sqldb.NewLinkRepository(db), func() { db.Close() }, nil
}
