package sqldb

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const (
	uniqueViolationErrCode = "23505"

	longURLConstraint   = "urls_pkey"
	shortCodeConstraint = "urls_shortlink_key"
)

// classifyDuplicate maps a driver constraint violation on the urls table to
// entity.ErrLongURLExists or entity.ErrShortCodeExists. It returns nil for
// any other error.
func classifyDuplicate(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey:
			return entity.ErrLongURLExists
		case sqlite3.ErrConstraintUnique:
			return entity.ErrShortCodeExists
		}

		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationErrCode {
		switch pgErr.ConstraintName {
		case longURLConstraint:
			return entity.ErrLongURLExists
		case shortCodeConstraint:
			return entity.ErrShortCodeExists
		}

		return entity.ErrDuplicateKey
	}

	return nil
}
