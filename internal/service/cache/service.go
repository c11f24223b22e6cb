package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kapu/ikusa-server/internal/constants"
	"github.com/kapu/ikusa-server/internal/domain"
	"github.com/kapu/ikusa-server/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return NewCacheServiceWithClient(client, logger), nil
}

// NewCacheServiceWithClient wraps an existing client without pinging it.
func NewCacheServiceWithClient(client *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{
		client: client,
		logger: logger,
	}
}

// Get decodes the JSON value at key into dest. A missing key reports
// found=false with no error.
func (c *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("get failed", "get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal(value, dest); err != nil {
			c.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
			return false, errors.NewCacheError("unmarshal failed", "get", key, err)
		}
	}

	return true, nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}

	return nil
}

// GetProfile returns a cached scrape result for sourceURL, if any.
// Errors are logged and reported as a miss.
func (c *CacheService) GetProfile(ctx context.Context, sourceURL string) (*domain.ScrapedProfile, bool) {
	var profile domain.ScrapedProfile
	found, err := c.Get(ctx, constants.CacheKeys.ProfilePrefix+sourceURL, &profile)
	if err != nil || !found {
		return nil, false
	}
	return &profile, true
}

func (c *CacheService) SetProfile(ctx context.Context, profile *domain.ScrapedProfile) {
	if profile == nil {
		return
	}
	key := constants.CacheKeys.ProfilePrefix + profile.SourceURL
	if err := c.Set(ctx, key, profile, constants.CacheTTL.ScrapedProfile); err != nil {
		c.logger.Warn("Failed to cache scraped profile", zap.String("key", key), zap.Error(err))
	}
}

func (c *CacheService) GetStats(ctx context.Context, uploadID string) (*domain.GuildStats, bool) {
	var stats domain.GuildStats
	found, err := c.Get(ctx, constants.CacheKeys.StatsPrefix+uploadID, &stats)
	if err != nil || !found {
		return nil, false
	}
	return &stats, true
}

func (c *CacheService) SetStats(ctx context.Context, uploadID string, stats *domain.GuildStats) {
	if stats == nil {
		return
	}
	key := constants.CacheKeys.StatsPrefix + uploadID
	if err := c.Set(ctx, key, stats, constants.CacheTTL.UploadStats); err != nil {
		c.logger.Warn("Failed to cache upload stats", zap.String("key", key), zap.Error(err))
	}
}

func (c *CacheService) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	c.logger.Info("Redis disconnected")
	return nil
}

func (c *CacheService) IsConnected(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}
