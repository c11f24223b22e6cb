package app

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/kapu/ikusa-server/internal/api"
	"github.com/kapu/ikusa-server/internal/config"
	"github.com/kapu/ikusa-server/internal/service/cache"
	"github.com/kapu/ikusa-server/internal/service/database"
	"github.com/kapu/ikusa-server/internal/service/profile"
	"github.com/kapu/ikusa-server/internal/service/scraper"
	"github.com/kapu/ikusa-server/internal/service/upload"
	"go.uber.org/zap"
)

// Container bundles the assembled services behind the HTTP server.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Server  *api.Server
	Scraper *scraper.ProfileScraper

	closers []func()
}

// Close releases every store opened by Build, in reverse order.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles the optional stores and the services on top of them.
// Redis, Postgres and MySQL are each skipped when their host is unset; the
// routes depending on a missing store answer 503.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	checks := make(map[string]api.HealthCheck)

	var (
		profileCache scraper.ProfileCache
		statsCache   upload.StatsCache
	)
	if cfg.Redis.Enabled {
		cacheSvc, cacheErr := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", cacheErr)
		}
		closers = append(closers, func() {
			_ = cacheSvc.Close()
		})
		profileCache = cacheSvc
		statsCache = cacheSvc
		checks["redis"] = func(ctx context.Context) error {
			if !cacheSvc.IsConnected(ctx) {
				return stderrors.New("redis unreachable")
			}
			return nil
		}
	} else {
		logger.Info("Redis not configured, caching disabled")
	}

	var uploads api.UploadService
	if cfg.Postgres.Enabled {
		postgresSvc, pgErr := database.NewPostgresService(database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger)
		if pgErr != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", pgErr)
		}
		closers = append(closers, func() {
			_ = postgresSvc.Close()
		})
		if err := postgresSvc.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		uploads = upload.NewService(upload.NewRepository(postgresSvc.GetDB(), logger), statsCache, logger)
		checks["postgres"] = postgresSvc.Ping
	} else {
		logger.Info("Postgres not configured, upload routes disabled")
	}

	var (
		profileStore   scraper.ProfileStore
		profileArchive api.ProfileArchive
	)
	if cfg.MySQL.Enabled {
		mysqlSvc, myErr := database.NewMySQLService(database.MySQLConfig{
			Host:     cfg.MySQL.Host,
			Port:     cfg.MySQL.Port,
			User:     cfg.MySQL.User,
			Password: cfg.MySQL.Password,
			Database: cfg.MySQL.Database,
		}, logger)
		if myErr != nil {
			return nil, fmt.Errorf("failed to create mysql service: %w", myErr)
		}
		closers = append(closers, func() {
			_ = mysqlSvc.Close()
		})
		if err := mysqlSvc.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		repo := profile.NewRepository(mysqlSvc.GetDB(), logger)
		profileStore = repo
		profileArchive = repo
		checks["mysql"] = mysqlSvc.Ping
	} else {
		logger.Info("MySQL not configured, scraped profiles are not archived")
	}

	profileScraper := scraper.NewProfileScraper(scraper.Config{
		Timeout:           cfg.Scraper.Timeout,
		UserAgent:         cfg.Scraper.UserAgent,
		RequestsPerSecond: cfg.Scraper.RequestsPerSecond,
		Burst:             cfg.Scraper.Burst,
		BatchConcurrency:  cfg.Scraper.BatchConcurrency,
	}, profileCache, profileStore, logger)

	server := api.NewServer(api.Dependencies{
		Scraper:        profileScraper,
		Uploads:        uploads,
		Profiles:       profileArchive,
		HealthChecks:   checks,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Server:  server,
		Scraper: profileScraper,
		closers: closers,
	}, nil
}
