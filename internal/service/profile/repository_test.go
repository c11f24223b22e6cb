package profile

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kapu/ikusa-server/internal/domain"
	"github.com/kapu/ikusa-server/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var profileColumns = []string{"name", "source_url", "max_power", "is_private", "scraped_at"}

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db, zap.NewNop()), mock
}

type fakeRow struct {
	name    string
	url     string
	power   sql.NullInt64
	private bool
	scraped time.Time
	scanErr error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	*dest[0].(*string) = r.name
	*dest[1].(*string) = r.url
	*dest[2].(*sql.NullInt64) = r.power
	*dest[3].(*bool) = r.private
	*dest[4].(*time.Time) = r.scraped
	return nil
}

func TestScanProfile(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	p, err := scanProfile(fakeRow{name: "Akame", url: "https://x/a", power: sql.NullInt64{Int64: 812, Valid: true}, scraped: at})
	require.NoError(t, err)
	require.NotNil(t, p.MaxPower)
	assert.Equal(t, 812, *p.MaxPower)
	assert.Equal(t, at, p.ScrapedAt)

	p, err = scanProfile(fakeRow{name: "Kuro", private: true})
	require.NoError(t, err)
	assert.Nil(t, p.MaxPower)
	assert.True(t, p.IsPrivate)

	_, err = scanProfile(fakeRow{scanErr: sql.ErrNoRows})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestHashURL(t *testing.T) {
	h := hashURL("https://example.com/perfil/Akame")
	assert.Len(t, h, 64)
	assert.Equal(t, h, hashURL("https://example.com/perfil/Akame"))
	assert.NotEqual(t, h, hashURL("https://example.com/perfil/Kuro"))
}

func TestRepositorySave(t *testing.T) {
	repo, mock := newMockRepository(t)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	power := 812
	url := "https://example.com/perfil/Akame"

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scraped_profiles")).
		WithArgs("Akame", url, hashURL(url), 812, false, at).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scraped_profiles")).
		WithArgs("Kuro", url, hashURL(url), nil, true, at).
		WillReturnResult(sqlmock.NewResult(2, 1))

	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &domain.ScrapedProfile{Name: "Akame", SourceURL: url, MaxPower: &power, ScrapedAt: at}))
	require.NoError(t, repo.Save(ctx, &domain.ScrapedProfile{Name: "Kuro", SourceURL: url, IsPrivate: true, ScrapedAt: at}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositorySaveError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scraped_profiles")).WillReturnError(sql.ErrConnDone)

	err := repo.Save(context.Background(), &domain.ScrapedProfile{Name: "Akame", SourceURL: "https://x"})
	var storeErr *errors.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "save", storeErr.Operation)
}

func TestRepositoryLatestByURL(t *testing.T) {
	repo, mock := newMockRepository(t)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	url := "https://example.com/perfil/Akame"

	mock.ExpectQuery(regexp.QuoteMeta("WHERE url_hash = ?")).
		WithArgs(hashURL(url)).
		WillReturnRows(sqlmock.NewRows(profileColumns).AddRow("Akame", url, 812, false, at))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE url_hash = ?")).
		WithArgs(hashURL("https://example.com/perfil/Kuro")).
		WillReturnRows(sqlmock.NewRows(profileColumns))

	p, err := repo.LatestByURL(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, 812, *p.MaxPower)
	assert.Equal(t, at, p.ScrapedAt)

	_, err = repo.LatestByURL(context.Background(), "https://example.com/perfil/Kuro")
	assert.True(t, errors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListRecent(t *testing.T) {
	repo, mock := newMockRepository(t)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM scraped_profiles")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("Akame", "https://x/a", 812, false, at).
			AddRow("Kuro", "https://x/k", nil, true, at.Add(-time.Hour)))

	profiles, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, 812, *profiles[0].MaxPower)
	assert.Nil(t, profiles[1].MaxPower)
	assert.True(t, profiles[1].IsPrivate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListRecentFailsOnBadRow(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM scraped_profiles")).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("Akame", "https://x/a", "lots", false, time.Now()))

	profiles, err := repo.ListRecent(context.Background(), 10)
	assert.Nil(t, profiles)
	var storeErr *errors.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "list", storeErr.Operation)
}
