// Package memory provides an in-process implementation of the link repository.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

// LinkRepository keeps links in two maps guarded by a single mutex, so both
// uniqueness checks and the insert happen atomically.
type LinkRepository struct {
	mu     sync.RWMutex
	byURL  map[string]string // long url -> short code
	byCode map[string]string // short code -> long url
}

func NewLinkRepository() *LinkRepository {
	return &LinkRepository{
		byURL:  make(map[string]string),
		byCode: make(map[string]string),
	}
}

func (r *LinkRepository) Save(_ context.Context, longURL, shortCode string) (*entity.Link, error) {
	const op = "adapter.repository.memory.LinkRepository.Save"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byURL[longURL]; ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrLongURLExists)
	}
	if _, ok := r.byCode[shortCode]; ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
	}

	r.byURL[longURL] = shortCode
	r.byCode[shortCode] = longURL

	return &entity.Link{LongURL: longURL, ShortCode: shortCode}, nil
}

func (r *LinkRepository) RetrieveByLongURL(_ context.Context, longURL string) (*entity.Link, error) {
	const op = "adapter.repository.memory.LinkRepository.RetrieveByLongURL"

	r.mu.RLock()
	defer r.mu.RUnlock()

	shortCode, ok := r.byURL[longURL]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	return &entity.Link{LongURL: longURL, ShortCode: shortCode}, nil
}

func (r *LinkRepository) RetrieveByShortCode(_ context.Context, shortCode string) (*entity.Link, error) {
	const op = "adapter.repository.memory.LinkRepository.RetrieveByShortCode"

	r.mu.RLock()
	defer r.mu.RUnlock()

	longURL, ok := r.byCode[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	return &entity.Link{LongURL: longURL, ShortCode: shortCode}, nil
}

// Len returns the number of stored links. It serves tests and diagnostics;
// the link use case never calls it.
func (r *LinkRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byURL)
}
