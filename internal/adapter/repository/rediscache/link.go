// Package rediscache provides a Redis read-through cache in front of a link repository.
//
// Links never change once created, so cached entries are never invalidated;
// an optional TTL only bounds memory usage. Misses are not cached.
package rediscache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const (
	codePrefix = "link:code:" // short code -> long url
	urlPrefix  = "link:url:"  // long url -> short code
)

type linkRepository interface {
	Save(ctx context.Context, longURL, shortCode string) (*entity.Link, error)
	RetrieveByLongURL(ctx context.Context, longURL string) (*entity.Link, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.Link, error)
}

type LinkRepository struct {
	repo   linkRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New wraps repo with a Redis cache. A zero ttl keeps entries until evicted.
func New(repo linkRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *LinkRepository {
	return &LinkRepository{
		repo:   repo,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *LinkRepository) Save(ctx context.Context, longURL, shortCode string) (*entity.Link, error) {
	link, err := r.repo.Save(ctx, longURL, shortCode)
	if err != nil {
		return nil, err
	}

	r.cache(ctx, link)

	return link, nil
}

func (r *LinkRepository) RetrieveByLongURL(ctx context.Context, longURL string) (*entity.Link, error) {
	if shortCode, ok := r.get(ctx, urlPrefix+longURL); ok {
		return &entity.Link{LongURL: longURL, ShortCode: shortCode}, nil
	}

	link, err := r.repo.RetrieveByLongURL(ctx, longURL)
	if err != nil {
		return nil, err
	}

	r.cache(ctx, link)

	return link, nil
}

func (r *LinkRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.Link, error) {
	if longURL, ok := r.get(ctx, codePrefix+shortCode); ok {
		return &entity.Link{LongURL: longURL, ShortCode: shortCode}, nil
	}

	link, err := r.repo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	r.cache(ctx, link)

	return link, nil
}

// get treats every Redis failure as a miss.
func (r *LinkRepository) get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.WarnContext(ctx, "failed to read link from cache", slog.String("key", key), slog.Any("err", err))
		}
		return "", false
	}

	return val, true
}

func (r *LinkRepository) cache(ctx context.Context, link *entity.Link) {
	pipe := r.client.Pipeline()
	pipe.Set(ctx, codePrefix+link.ShortCode, link.LongURL, r.ttl)
	pipe.Set(ctx, urlPrefix+link.LongURL, link.ShortCode, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.WarnContext(ctx, "failed to cache link", slog.String("short_code", link.ShortCode), slog.Any("err", err))
	}
}

// Ping checks Redis connectivity.
func (r *LinkRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
