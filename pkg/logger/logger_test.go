package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestNew(t *testing.T) {
	t.Run("invalid level", func(t *testing.T) {
		l, err := New("test", Options{Level: "loud"})

		assert.Error(t, err)
		assert.Nil(t, l)
	})

	t.Run("stdout", func(t *testing.T) {
		l, err := New("test", Options{Level: "debug"})

		require.NoError(t, err)
		assert.Equal(t, os.Stdout, l.Options.Writer)
	})

	t.Run("rotated file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shortlink.log")

		l, err := New("test", Options{Level: "info", JSON: true, File: path, MaxSizeMB: 1, MaxAgeDays: 1})
		require.NoError(t, err)

		w, ok := l.Options.Writer.(*lumberjack.Logger)
		require.True(t, ok)
		t.Cleanup(func() {
			w.Close()
		})

		l.Info("hello")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello")
	})
}
