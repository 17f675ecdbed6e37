// Package sqldb implements the link repository on top of database/sql through sqlx.
// The same queries serve SQLite and PostgreSQL; placeholders are rebound per driver.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) Save(ctx context.Context, longURL, shortCode string) (*entity.Link, error) {
	const op = "adapter.repository.sqldb.LinkRepository.Save"
	const query = `INSERT INTO urls (link, shortlink) VALUES (?, ?)`

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), longURL, shortCode); err != nil {
		if dupErr := classifyDuplicate(err); dupErr != nil {
			return nil, fmt.Errorf("%s: %w", op, dupErr)
		}

		return nil, fmt.Errorf("%s: failed to insert into urls table: %w", op, err)
	}

	return &entity.Link{LongURL: longURL, ShortCode: shortCode}, nil
}

func (r *LinkRepository) RetrieveByLongURL(ctx context.Context, longURL string) (*entity.Link, error) {
	const op = "adapter.repository.sqldb.LinkRepository.RetrieveByLongURL"
	const query = `SELECT shortlink FROM urls WHERE link = ?`

	var shortCode string

	if err := r.db.GetContext(ctx, &shortCode, r.db.Rebind(query), longURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from urls table: %w", op, err)
	}

	return &entity.Link{LongURL: longURL, ShortCode: shortCode}, nil
}

func (r *LinkRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.Link, error) {
	const op = "adapter.repository.sqldb.LinkRepository.RetrieveByShortCode"
	const query = `SELECT link FROM urls WHERE shortlink = ?`

	var longURL string

	if err := r.db.GetContext(ctx, &longURL, r.db.Rebind(query), shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from urls table: %w", op, err)
	}

	return &entity.Link{LongURL: longURL, ShortCode: shortCode}, nil
}
