package upload

import (
	"context"
	"fmt"

	"github.com/kapu/ikusa-server/internal/domain"
	"github.com/kapu/ikusa-server/internal/roster"
	"github.com/kapu/ikusa-server/pkg/errors"
	"go.uber.org/zap"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, req domain.UploadRequest) (*domain.Upload, error)
	Get(ctx context.Context, id string) (*domain.Upload, error)
	List(ctx context.Context, limit int) ([]*domain.Upload, error)
	SaveStats(ctx context.Context, id string, stats *domain.GuildStats) error
	GetStats(ctx context.Context, id string) (*domain.GuildStats, error)
}

// StatsCache is optional; a nil cache disables caching.
type StatsCache interface {
	GetStats(ctx context.Context, uploadID string) (*domain.GuildStats, bool)
	SetStats(ctx context.Context, uploadID string, stats *domain.GuildStats)
}

type Service struct {
	store  Store
	cache  StatsCache
	logger *zap.Logger
}

func NewService(store Store, cache StatsCache, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Create persists a roster and its stats. A failure to persist the stats
// snapshot is logged; the stats are recomputed on demand later.
func (s *Service) Create(ctx context.Context, req domain.UploadRequest) (*domain.Upload, *domain.GuildStats, error) {
	upload, err := s.store.Create(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	stats := roster.BuildStats(upload.Guild, upload.Players)
	if err := s.store.SaveStats(ctx, upload.ID, &stats); err != nil {
		s.logger.Warn("Failed to persist upload stats", zap.String("upload", upload.ID), zap.Error(err))
	}
	s.setCache(ctx, upload.ID, &stats)

	return upload, &stats, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Upload, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]*domain.Upload, error) {
	return s.store.List(ctx, limit)
}

// Stats resolves an upload's stats from the cache, then the stored snapshot,
// and finally by recomputing from the stored players.
func (s *Service) Stats(ctx context.Context, id string) (*domain.GuildStats, error) {
	if s.cache != nil {
		if stats, ok := s.cache.GetStats(ctx, id); ok {
			s.logger.Debug("Stats cache hit", zap.String("upload", id))
			return stats, nil
		}
	}

	stats, err := s.store.GetStats(ctx, id)
	if err == nil {
		s.setCache(ctx, id, stats)
		return stats, nil
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	upload, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	computed := roster.BuildStats(upload.Guild, upload.Players)
	if err := s.store.SaveStats(ctx, id, &computed); err != nil {
		s.logger.Warn("Failed to persist recomputed stats", zap.String("upload", id), zap.Error(err))
	}
	s.setCache(ctx, id, &computed)

	return &computed, nil
}

func (s *Service) Compare(ctx context.Context, idA, idB string) (*domain.StatsComparison, error) {
	a, err := s.Stats(ctx, idA)
	if err != nil {
		return nil, fmt.Errorf("upload a: %w", err)
	}
	b, err := s.Stats(ctx, idB)
	if err != nil {
		return nil, fmt.Errorf("upload b: %w", err)
	}

	cmp := roster.Compare(*a, *b)
	return &cmp, nil
}

func (s *Service) setCache(ctx context.Context, id string, stats *domain.GuildStats) {
	if s.cache != nil {
		s.cache.SetStats(ctx, id, stats)
	}
}
