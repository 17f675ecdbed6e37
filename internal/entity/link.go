// Package entity defines the entities and errors used in the application.
// It includes the Link struct, which maps a long URL to its short code,
// along with the errors shared by the storage and use case layers.
package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrLinkNotFound is returned when no link matches the requested long URL or short code.
	ErrLinkNotFound = errors.New("link not found")
	// ErrDuplicateKey is returned when saving a link would violate a uniqueness constraint.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrShortCodeExists is returned when the short code is already assigned to another long URL.
	ErrShortCodeExists = fmt.Errorf("short code exists: %w", ErrDuplicateKey)
	// ErrLongURLExists is returned when the long URL already has a short code.
	ErrLongURLExists = fmt.Errorf("long url exists: %w", ErrDuplicateKey)
)

// Link is an immutable mapping between a long URL and its short code.
type Link struct {
	LongURL   string // LongURL is the URL submitted by the client.
	ShortCode string // ShortCode is the generated code that resolves to LongURL.
}
