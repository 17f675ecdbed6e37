package usecase

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var urlSafe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestNewNanoIDGenerator(t *testing.T) {
	t.Run("invalid length", func(t *testing.T) {
		for _, length := range []int{0, -1} {
			gen, err := NewNanoIDGenerator(length)

			assert.ErrorIs(t, err, ErrInvalidCodeLength)
			assert.Nil(t, gen)
		}
	})

	t.Run("success", func(t *testing.T) {
		gen, err := NewNanoIDGenerator(DefaultShortCodeLength)

		require.NoError(t, err)
		assert.NotNil(t, gen)
	})
}

func TestNanoIDGenerator_Generate(t *testing.T) {
	gen, err := NewNanoIDGenerator(DefaultShortCodeLength)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code := gen.Generate()

		assert.Len(t, code, DefaultShortCodeLength)
		assert.Regexp(t, urlSafe, code)
		seen[code] = struct{}{}
	}

	assert.Greater(t, len(seen), 90)
}
