package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5432, User: "ikusa", Password: "secret", Database: "roster"}
	assert.Equal(t, "host=db port=5432 user=ikusa password=secret dbname=roster sslmode=disable", cfg.DSN())

	cfg.SSLMode = "require"
	assert.True(t, strings.HasSuffix(cfg.DSN(), "sslmode=require"))
}

func TestMySQLDSNRoundTrip(t *testing.T) {
	cfg := MySQLConfig{Host: "mysql", Port: 3306, User: "ikusa", Password: "p@ss", Database: "profiles"}

	parsed, err := mysql.ParseDSN(cfg.DSN())
	require.NoError(t, err)
	assert.Equal(t, "mysql:3306", parsed.Addr)
	assert.Equal(t, "ikusa", parsed.User)
	assert.Equal(t, "p@ss", parsed.Passwd)
	assert.Equal(t, "profiles", parsed.DBName)
	assert.True(t, parsed.ParseTime)
}

func TestSchemasAreIdempotent(t *testing.T) {
	for _, stmt := range append(append([]string{}, postgresSchema...), mysqlSchema...) {
		assert.Contains(t, stmt, "IF NOT EXISTS")
	}
}

func TestPingReportsStoreHealth(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	pg := &PostgresService{db: db}
	require.NoError(t, pg.Ping(context.Background()))

	my := &MySQLService{db: db}
	assert.EqualError(t, my.Ping(context.Background()), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}
