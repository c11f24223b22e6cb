package profile

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"

	"github.com/kapu/ikusa-server/internal/domain"
	"github.com/kapu/ikusa-server/pkg/errors"
	"go.uber.org/zap"
)

const storeName = "mysql"

// Repository archives every scrape so power values can be tracked over time.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRepository expects a MySQL pool, usually MySQLService.GetDB.
func NewRepository(db *sql.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Save(ctx context.Context, p *domain.ScrapedProfile) error {
	var maxPower sql.NullInt64
	if p.MaxPower != nil {
		maxPower = sql.NullInt64{Int64: int64(*p.MaxPower), Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO scraped_profiles (name, source_url, url_hash, max_power, is_private, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.Name, p.SourceURL, hashURL(p.SourceURL), maxPower, p.IsPrivate, p.ScrapedAt.UTC()); err != nil {
		return errors.NewStoreError("failed to save scraped profile", storeName, "save", err)
	}

	r.logger.Debug("Scraped profile archived",
		zap.String("name", p.Name),
		zap.String("url", p.SourceURL),
	)
	return nil
}

// LatestByURL returns the most recent archived scrape of sourceURL.
func (r *Repository) LatestByURL(ctx context.Context, sourceURL string) (*domain.ScrapedProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, source_url, max_power, is_private, scraped_at
		FROM scraped_profiles
		WHERE url_hash = ?
		ORDER BY scraped_at DESC
		LIMIT 1
	`, hashURL(sourceURL))

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("profile", sourceURL)
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to query profile", storeName, "latest", err)
	}
	return p, nil
}

func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*domain.ScrapedProfile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, source_url, max_power, is_private, scraped_at
		FROM scraped_profiles
		ORDER BY scraped_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.NewStoreError("failed to list profiles", storeName, "list", err)
	}
	defer rows.Close()

	profiles := make([]*domain.ScrapedProfile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, errors.NewStoreError("failed to scan profile", storeName, "list", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to iterate profiles", storeName, "list", err)
	}
	return profiles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.ScrapedProfile, error) {
	var (
		p        domain.ScrapedProfile
		maxPower sql.NullInt64
	)
	if err := row.Scan(&p.Name, &p.SourceURL, &maxPower, &p.IsPrivate, &p.ScrapedAt); err != nil {
		return nil, err
	}
	if maxPower.Valid {
		v := int(maxPower.Int64)
		p.MaxPower = &v
	}
	return &p, nil
}

// source_url is too long for a MySQL index, so lookups go through its hash.
func hashURL(sourceURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return hex.EncodeToString(sum[:])
}
