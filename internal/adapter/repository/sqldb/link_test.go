package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/pkg/database"
)

var errUnknown = errors.New("unknown error")

func setupMockLinkRepository(t testing.TB) (*LinkRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}

	db := sqlx.NewDb(mockDB, database.DriverSQLite)
	repo := NewLinkRepository(db)

	t.Cleanup(func() {
		db.Close()
	})

	return repo, mock
}

func setupSQLiteLinkRepository(t testing.TB) *LinkRepository {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := database.New(context.Background(), database.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	require.NoError(t, database.RunMigrations(database.DriverSQLite, dsn))

	return NewLinkRepository(db)
}

func TestLinkRepository_Save(t *testing.T) {
	t.Run("long url exists (sqlite)", func(t *testing.T) {
		repo, mock := setupMockLinkRepository(t)

		mock.ExpectExec(`INSERT INTO urls`).
			WithArgs("https://example.com", "abcd").
			WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey})

		link, err := repo.Save(context.TODO(), "https://example.com", "abcd")

		assert.ErrorIs(t, err, entity.ErrLongURLExists)
		assert.Nil(t, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short code exists (sqlite)", func(t *testing.T) {
		repo, mock := setupMockLinkRepository(t)

		mock.ExpectExec(`INSERT INTO urls`).
			WithArgs("https://example.com", "abcd").
			WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique})

		link, err := repo.Save(context.TODO(), "https://example.com", "abcd")

		assert.ErrorIs(t, err, entity.ErrShortCodeExists)
		assert.Nil(t, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("long url exists (postgres)", func(t *testing.T) {
		repo, mock := setupMockLinkRepository(t)

		mock.ExpectExec(`INSERT INTO urls`).
			WithArgs("https://example.com", "abcd").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationErrCode, ConstraintName: longURLConstraint})

		link, err := repo.Save(context.TODO(), "https://example.com", "abcd")

		assert.ErrorIs(t, err, entity.ErrLongURLExists)
		assert.Nil(t, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short code exists (postgres)", func(t *testing.T) {
		repo, mock := setupMockLinkRepository(t)

		mock.ExpectExec(`INSERT INTO urls`).
			WithArgs("https://example.com", "abcd").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationErrCode, ConstraintName: shortCodeConstraint})

		link, err := repo.Save(context.TODO(), "https://example.com", "abcd")

		assert.ErrorIs(t, err, entity.ErrShortCodeExists)
		assert.Nil(t, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupMockLinkRepository(t)

		mock.ExpectExec(`INSERT INTO urls`).
			WithArgs("https://example.com", "abcd").
			WillReturnError(errUnknown)

		link, err := repo.Save(context.TODO(), "https://example.com", "abcd")

		assert.ErrorIs(t, err, errUnknown)
		assert.NotErrorIs(t, err, entity.ErrDuplicateKey)
		assert.Nil(t, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupMockLinkRepository(t)

		mock.ExpectExec(`INSERT INTO urls`).
			WithArgs("https://example.com", "abcd").
			WillReturnResult(sqlmock.NewResult(1, 1))

		link, err := repo.Save(context.TODO(), "https://example.com", "abcd")

		assert.NoError(t, err)
		assert.Equal(t, &entity.Link{LongURL: "https://example.com", ShortCode: "abcd"}, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLinkRepository_RetrieveByLongURL(t *testing.T) {
	t.Run("link not found", func(t *testing.T) {
		repo, mock := setupMockLinkRepository(t)

		mock.ExpectQuery(`SELECT shortlink FROM urls`).
			WithArgs("https://example.com").
			WillReturnError(sql.ErrNoRows)

		link, err := repo.RetrieveByLongURL(context.TODO(), "https://example.com")

		assert.ErrorIs(t, err, entity.ErrLinkNotFound)
		assert.Nil(t, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupMockLinkRepository(t)

		mock.ExpectQuery(`SELECT shortlink FROM urls`).
			WithArgs("https://example.com").
			WillReturnError(errUnknown)

		link, err := repo.RetrieveByLongURL(context.TODO(), "https://example.com")

		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupMockLinkRepository(t)

		mock.ExpectQuery(`SELECT shortlink FROM urls`).
			WithArgs("https://example.com").
			WillReturnRows(sqlmock.NewRows([]string{"shortlink"}).AddRow("abcd"))

		link, err := repo.RetrieveByLongURL(context.TODO(), "https://example.com")

		assert.NoError(t, err)
		assert.Equal(t, &entity.Link{LongURL: "https://example.com", ShortCode: "abcd"}, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLinkRepository_RetrieveByShortCode(t *testing.T) {
	t.Run("link not found", func(t *testing.T) {
		repo, mock := setupMockLinkRepository(t)

		mock.ExpectQuery(`SELECT link FROM urls`).
			WithArgs("zzzz").
			WillReturnError(sql.ErrNoRows)

		link, err := repo.RetrieveByShortCode(context.TODO(), "zzzz")

		assert.ErrorIs(t, err, entity.ErrLinkNotFound)
		assert.Nil(t, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupMockLinkRepository(t)

		mock.ExpectQuery(`SELECT link FROM urls`).
			WithArgs("abcd").
			WillReturnError(errUnknown)

		link, err := repo.RetrieveByShortCode(context.TODO(), "abcd")

		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupMockLinkRepository(t)

		mock.ExpectQuery(`SELECT link FROM urls`).
			WithArgs("abcd").
			WillReturnRows(sqlmock.NewRows([]string{"link"}).AddRow("https://example.com"))

		link, err := repo.RetrieveByShortCode(context.TODO(), "abcd")

		assert.NoError(t, err)
		assert.Equal(t, &entity.Link{LongURL: "https://example.com", ShortCode: "abcd"}, link)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLinkRepository_SQLite(t *testing.T) {
	repo := setupSQLiteLinkRepository(t)
	ctx := context.Background()

	link, err := repo.Save(ctx, "https://example.com", "abcd")
	require.NoError(t, err)
	assert.Equal(t, "abcd", link.ShortCode)

	t.Run("round trip", func(t *testing.T) {
		byURL, err := repo.RetrieveByLongURL(ctx, "https://example.com")
		require.NoError(t, err)
		assert.Equal(t, "abcd", byURL.ShortCode)

		byCode, err := repo.RetrieveByShortCode(ctx, "abcd")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", byCode.LongURL)
	})

	t.Run("long url exists", func(t *testing.T) {
		_, err := repo.Save(ctx, "https://example.com", "efgh")

		assert.ErrorIs(t, err, entity.ErrLongURLExists)
	})

	t.Run("short code exists", func(t *testing.T) {
		_, err := repo.Save(ctx, "https://example.org", "abcd")

		assert.ErrorIs(t, err, entity.ErrShortCodeExists)

		_, err = repo.RetrieveByLongURL(ctx, "https://example.org")
		assert.ErrorIs(t, err, entity.ErrLinkNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.RetrieveByShortCode(ctx, "zzzz")

		assert.ErrorIs(t, err, entity.ErrLinkNotFound)
	})
}
