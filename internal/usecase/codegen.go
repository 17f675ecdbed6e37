package usecase

import (
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultShortCodeLength is the length of generated short codes when none is configured.
const DefaultShortCodeLength = 4

var ErrInvalidCodeLength = errors.New("short code length must be positive")

// CodeGenerator produces candidate short codes.
// Implementations must not derive the code from the long URL.
type CodeGenerator interface {
	Generate() string
}

// NanoIDGenerator generates fixed-length codes from the URL-safe nanoid alphabet.
type NanoIDGenerator struct {
	length int
}

func NewNanoIDGenerator(length int) (*NanoIDGenerator, error) {
	const op = "usecase.NewNanoIDGenerator"

	if length <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCodeLength)
	}

	return &NanoIDGenerator{length: length}, nil
}

// Generate returns a new random code. Must only panics on a non-positive
// length, which the constructor rejects.
func (g *NanoIDGenerator) Generate() string {
	return gonanoid.Must(g.length)
}
