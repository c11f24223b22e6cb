package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/kapu/ikusa-server/internal/constants"
	"go.uber.org/zap"
)

// MySQLService owns the connection pool of the scraped-profile archive.
type MySQLService struct {
	db     *sql.DB
	logger *zap.Logger
}

type MySQLConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

func (cfg MySQLConfig) DSN() string {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func NewMySQLService(cfg MySQLConfig, logger *zap.Logger) (*MySQLService, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	configurePool(db)

	ctx, cancel := context.WithTimeout(context.Background(), constants.StoreConfig.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	logger.Info("MySQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
	)

	return &MySQLService{
		db:     db,
		logger: logger,
	}, nil
}

func (ms *MySQLService) EnsureSchema(ctx context.Context) error {
	for _, stmt := range mysqlSchema {
		if _, err := ms.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply mysql schema: %w", err)
		}
	}
	ms.logger.Info("MySQL schema ensured", zap.Int("statements", len(mysqlSchema)))
	return nil
}

func (ms *MySQLService) GetDB() *sql.DB {
	return ms.db
}

func (ms *MySQLService) Close() error {
	if ms.db != nil {
		return ms.db.Close()
	}
	return nil
}

func (ms *MySQLService) Ping(ctx context.Context) error {
	return ms.db.PingContext(ctx)
}
