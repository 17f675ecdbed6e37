package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

// DefaultMaxAttempts bounds the number of codes tried for a single long URL.
const DefaultMaxAttempts = 5

var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")

type linkRepository interface {
	Save(ctx context.Context, longURL, shortCode string) (*entity.Link, error)
	RetrieveByLongURL(ctx context.Context, longURL string) (*entity.Link, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.Link, error)
}

type Option func(*LinkUseCase)

// WithMaxAttempts overrides DefaultMaxAttempts. Non-positive values are ignored.
func WithMaxAttempts(n int) Option {
	return func(uc *LinkUseCase) {
		if n > 0 {
			uc.maxAttempts = n
		}
	}
}

type LinkUseCase struct {
	linkRepo    linkRepository
	codeGen     CodeGenerator
	maxAttempts int
}

func New(linkRepo linkRepository, codeGen CodeGenerator, opts ...Option) *LinkUseCase {
	uc := &LinkUseCase{
		linkRepo:    linkRepo,
		codeGen:     codeGen,
		maxAttempts: DefaultMaxAttempts,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Shorten returns the link for longURL, creating it on first use.
//
// Repeated and concurrent calls for the same long URL converge on one short
// code: the storage uniqueness constraints decide races, not the initial read.
func (uc *LinkUseCase) Shorten(ctx context.Context, longURL string) (*entity.Link, error) {
	const op = "usecase.LinkUseCase.Shorten"

	link, err := uc.linkRepo.RetrieveByLongURL(ctx, longURL)
	if err == nil {
		return link, nil
	}
	if !errors.Is(err, entity.ErrLinkNotFound) {
		return nil, fmt.Errorf("%s: failed to look up long url: %w", op, err)
	}

	for attempt := 0; attempt < uc.maxAttempts; attempt++ {
		shortCode := uc.codeGen.Generate()

		link, err := uc.linkRepo.Save(ctx, longURL, shortCode)
		if err == nil {
			return link, nil
		}

		switch {
		case errors.Is(err, entity.ErrShortCodeExists):
			continue
		case errors.Is(err, entity.ErrLongURLExists):
			link, err := uc.linkRepo.RetrieveByLongURL(ctx, longURL)
			if err != nil {
				return nil, fmt.Errorf("%s: failed to look up concurrently created link: %w", op, err)
			}

			return link, nil
		default:
			return nil, fmt.Errorf("%s: failed to save link: %w", op, err)
		}
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

func (uc *LinkUseCase) Resolve(ctx context.Context, shortCode string) (*entity.Link, error) {
	const op = "usecase.LinkUseCase.Resolve"

	link, err := uc.linkRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return link, nil
}
