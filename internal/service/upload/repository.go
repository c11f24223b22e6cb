package upload

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kapu/ikusa-server/internal/domain"
	"github.com/kapu/ikusa-server/internal/roster"
	"github.com/kapu/ikusa-server/pkg/errors"
	"go.uber.org/zap"
)

const storeName = "postgres"

// Repository persists uploads, their player lines and computed stats.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRepository expects a Postgres pool, usually PostgresService.GetDB.
func NewRepository(db *sql.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create stores the upload header and every player line in one transaction.
func (r *Repository) Create(ctx context.Context, req domain.UploadRequest) (*domain.Upload, error) {
	upload := &domain.Upload{
		ID:          uuid.NewString(),
		Guild:       req.Guild,
		Label:       req.Label,
		UploadedAt:  time.Now().UTC(),
		PlayerCount: len(req.Players),
		Players:     req.Players,
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewStoreError("failed to begin upload transaction", storeName, "create", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO uploads (id, guild, label, uploaded_at) VALUES ($1, $2, $3, $4)`,
		upload.ID, upload.Guild, upload.Label, upload.UploadedAt,
	); err != nil {
		return nil, errors.NewStoreError("failed to insert upload", storeName, "create", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO upload_players (
			upload_id, position, family_name, character_name, main_class,
			ap, aap, dp, gearscore, kills, deaths, eligible
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`)
	if err != nil {
		return nil, errors.NewStoreError("failed to prepare player insert", storeName, "create", err)
	}
	defer stmt.Close()

	for i, p := range req.Players {
		if _, err := stmt.ExecContext(ctx,
			upload.ID, i, p.FamilyName, p.CharacterName, p.MainClass,
			p.AP.Float64(), p.AAP.Float64(), p.DP.Float64(), roster.Gearscore(p),
			p.Kills, p.Deaths, roster.IsValidForStats(p),
		); err != nil {
			return nil, errors.NewStoreError(fmt.Sprintf("failed to insert player %d", i), storeName, "create", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewStoreError("failed to commit upload", storeName, "create", err)
	}

	r.logger.Info("Upload stored",
		zap.String("id", upload.ID),
		zap.String("guild", upload.Guild),
		zap.Int("players", upload.PlayerCount),
	)
	return upload, nil
}

// Get returns an upload with its players in upload order.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Upload, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NewNotFoundError("upload", id)
	}

	upload := &domain.Upload{ID: id}
	err := r.db.QueryRowContext(ctx,
		`SELECT guild, label, uploaded_at FROM uploads WHERE id = $1`, id,
	).Scan(&upload.Guild, &upload.Label, &upload.UploadedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("upload", id)
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to query upload", storeName, "get", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT family_name, character_name, main_class, ap, aap, dp, kills, deaths
		FROM upload_players
		WHERE upload_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, errors.NewStoreError("failed to query upload players", storeName, "get", err)
	}
	defer rows.Close()

	upload.Players = make([]domain.PlayerRecord, 0)
	for rows.Next() {
		var (
			p           domain.PlayerRecord
			ap, aap, dp float64
		)
		if err := rows.Scan(&p.FamilyName, &p.CharacterName, &p.MainClass, &ap, &aap, &dp, &p.Kills, &p.Deaths); err != nil {
			return nil, errors.NewStoreError("failed to scan upload player", storeName, "get", err)
		}
		p.AP, p.AAP, p.DP = domain.Stat(ap), domain.Stat(aap), domain.Stat(dp)
		upload.Players = append(upload.Players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to iterate upload players", storeName, "get", err)
	}

	upload.PlayerCount = len(upload.Players)
	return upload, nil
}

// List returns the newest uploads first, without players.
func (r *Repository) List(ctx context.Context, limit int) ([]*domain.Upload, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.guild, u.label, u.uploaded_at, COUNT(p.position)
		FROM uploads u
		LEFT JOIN upload_players p ON p.upload_id = u.id
		GROUP BY u.id, u.guild, u.label, u.uploaded_at
		ORDER BY u.uploaded_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.NewStoreError("failed to list uploads", storeName, "list", err)
	}
	defer rows.Close()

	uploads := make([]*domain.Upload, 0)
	for rows.Next() {
		u := &domain.Upload{}
		if err := rows.Scan(&u.ID, &u.Guild, &u.Label, &u.UploadedAt, &u.PlayerCount); err != nil {
			return nil, errors.NewStoreError("failed to scan upload", storeName, "list", err)
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to iterate uploads", storeName, "list", err)
	}

	return uploads, nil
}

func (r *Repository) SaveStats(ctx context.Context, id string, stats *domain.GuildStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO upload_stats (upload_id, stats, computed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (upload_id) DO UPDATE SET stats = EXCLUDED.stats, computed_at = EXCLUDED.computed_at
	`, id, payload); err != nil {
		return errors.NewStoreError("failed to save upload stats", storeName, "save_stats", err)
	}
	return nil
}

func (r *Repository) GetStats(ctx context.Context, id string) (*domain.GuildStats, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NewNotFoundError("upload stats", id)
	}

	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT stats FROM upload_stats WHERE upload_id = $1`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("upload stats", id)
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to query upload stats", storeName, "get_stats", err)
	}

	var stats domain.GuildStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}
	return &stats, nil
}
