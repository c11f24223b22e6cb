package scraper

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kapu/ikusa-server/internal/constants"
	"github.com/kapu/ikusa-server/internal/domain"
	"github.com/kapu/ikusa-server/internal/util"
	"github.com/kapu/ikusa-server/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ProfileCache short-circuits repeated scrapes of the same URL.
type ProfileCache interface {
	GetProfile(ctx context.Context, sourceURL string) (*domain.ScrapedProfile, bool)
	SetProfile(ctx context.Context, profile *domain.ScrapedProfile)
}

// ProfileStore archives successful scrapes. The latest archived scrape is
// served when the circuit to the profile source is open.
type ProfileStore interface {
	Save(ctx context.Context, profile *domain.ScrapedProfile) error
	LatestByURL(ctx context.Context, sourceURL string) (*domain.ScrapedProfile, error)
}

type Config struct {
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	Burst             int
	BatchConcurrency  int
	MaxBodyBytes      int64
}

var errCircuitOpen = stderrors.New("circuit open")

func DefaultConfig() Config {
	return Config{
		Timeout:           constants.ScraperConfig.Timeout,
		UserAgent:         constants.ScraperConfig.UserAgent,
		RequestsPerSecond: constants.ScraperConfig.RequestsPerSec,
		Burst:             constants.ScraperConfig.Burst,
		BatchConcurrency:  constants.ScraperConfig.BatchConcurrency,
		MaxBodyBytes:      constants.ScraperConfig.MaxBodyBytes,
	}
}

// ProfileScraper fetches leaderboard profile pages and extracts the power
// value and privacy flag. Safe for concurrent use.
type ProfileScraper struct {
	httpClient *http.Client
	cache      ProfileCache
	store      ProfileStore
	limiter    *rate.Limiter
	breaker    *util.CircuitBreaker
	cfg        Config
	logger     *zap.Logger
	now        func() time.Time
}

// NewProfileScraper wires a scraper. cache and store may be nil.
func NewProfileScraper(cfg Config, cache ProfileCache, store ProfileStore, logger *zap.Logger) *ProfileScraper {
	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaults.Burst
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = defaults.BatchConcurrency
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &ProfileScraper{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:   cache,
		store:   store,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		breaker: util.NewCircuitBreaker("profile-scraper",
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			logger,
		),
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Scrape fetches sourceURL and returns the extracted profile. name defaults
// to the name carried by the URL (see util.NameFromURL), truncated to fit the
// archive. Fetch and parse failures are returned as *errors.ScrapeError; an
// invalid URL as *errors.ValidationError. While the circuit is open the
// latest archived scrape is returned instead, when there is one.
func (s *ProfileScraper) Scrape(ctx context.Context, sourceURL, name string) (*domain.ScrapedProfile, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if err := validateURL(sourceURL); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = util.TruncateString(util.NameFromURL(sourceURL), constants.ProfileNameMaxRunes)
	}

	if s.cache != nil {
		if cached, found := s.cache.GetProfile(ctx, sourceURL); found {
			s.logger.Debug("Scraper cache hit", zap.String("url", sourceURL))
			profile := *cached
			profile.Name = name
			return &profile, nil
		}
	}

	extraction, err := s.fetch(ctx, sourceURL)
	if err != nil {
		if stderrors.Is(err, errCircuitOpen) {
			if stale := s.archived(ctx, sourceURL, name); stale != nil {
				return stale, nil
			}
		}
		s.logger.Warn("Profile scrape failed", zap.String("url", sourceURL), zap.Error(err))
		return nil, err
	}

	profile := &domain.ScrapedProfile{
		Name:      name,
		SourceURL: sourceURL,
		MaxPower:  extraction.MaxPower,
		IsPrivate: extraction.IsPrivate,
		ScrapedAt: s.now().UTC(),
	}

	if s.cache != nil {
		s.cache.SetProfile(ctx, profile)
	}
	if s.store != nil {
		if err := s.store.Save(ctx, profile); err != nil {
			s.logger.Warn("Failed to archive scraped profile", zap.String("url", sourceURL), zap.Error(err))
		}
	}

	fields := []zap.Field{
		zap.String("name", name),
		zap.String("url", sourceURL),
		zap.Bool("private", profile.IsPrivate),
	}
	if profile.MaxPower != nil {
		fields = append(fields, zap.Int("max_power", *profile.MaxPower))
	}
	s.logger.Info("Profile scraped", fields...)

	return profile, nil
}

// ScrapeMany scrapes every target with bounded concurrency. Results keep the
// order of targets; a failed target carries its error message.
func (s *ProfileScraper) ScrapeMany(ctx context.Context, targets []domain.ScrapeTarget) []domain.ScrapeResult {
	results := make([]domain.ScrapeResult, len(targets))

	p := pool.New().WithMaxGoroutines(s.cfg.BatchConcurrency)
	for i, target := range targets {
		p.Go(func() {
			result := domain.ScrapeResult{Target: target}
			profile, err := s.Scrape(ctx, target.URL, target.Name)
			if err != nil {
				result.Error = err.Error()
			} else {
				result.Profile = profile
			}
			results[i] = result
		})
	}
	p.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	s.logger.Info("Batch scrape completed",
		zap.Int("targets", len(targets)),
		zap.Int("failed", failed))

	return results
}

// archived returns the latest stored scrape of sourceURL, or nil.
func (s *ProfileScraper) archived(ctx context.Context, sourceURL, name string) *domain.ScrapedProfile {
	if s.store == nil {
		return nil
	}
	stale, err := s.store.LatestByURL(ctx, sourceURL)
	if err != nil {
		if !errors.IsNotFound(err) {
			s.logger.Warn("Failed to load archived profile", zap.String("url", sourceURL), zap.Error(err))
		}
		return nil
	}

	s.logger.Info("Serving archived profile while source is unavailable",
		zap.String("url", sourceURL),
		zap.Time("scraped_at", stale.ScrapedAt))
	stale.Name = name
	return stale
}

func (s *ProfileScraper) fetch(ctx context.Context, sourceURL string) (*Extraction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, errors.NewScrapeError("failed to build request", sourceURL, err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, errors.NewScrapeError("rate limiter wait aborted", sourceURL, err)
	}

	// every admitted call reports exactly one outcome to the breaker below
	if !s.breaker.CanExecute() {
		return nil, errors.NewScrapeError("profile source temporarily unavailable", sourceURL, errCircuitOpen)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			s.breaker.RecordCancelled()
		} else {
			s.breaker.RecordFailure()
		}
		return nil, errors.NewScrapeError("HTTP request failed", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		s.breaker.RecordFailure()
	} else {
		s.breaker.RecordSuccess()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewScrapeError(fmt.Sprintf("unexpected status code: %d", resp.StatusCode), sourceURL, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, errors.NewScrapeError("failed to read response body", sourceURL, err)
	}
	if int64(len(body)) > s.cfg.MaxBodyBytes {
		return nil, errors.NewScrapeError(fmt.Sprintf("profile page exceeds %d bytes", s.cfg.MaxBodyBytes), sourceURL, nil)
	}

	extraction, err := ExtractProfile(bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewScrapeError("failed to parse profile page", sourceURL, err)
	}
	return extraction, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.NewValidationError("url is required", "url", raw)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.NewValidationError("url must be an absolute http(s) URL", "url", raw)
	}
	return nil
}
