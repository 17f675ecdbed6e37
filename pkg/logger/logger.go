// Package logger builds the structured request/application logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-chi/httplog/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level      string
	JSON       bool
	Concise    bool
	File       string // rotated log file; stdout when empty
	MaxSizeMB  int
	MaxAgeDays int
}

// New returns an httplog logger. Its embedded *slog.Logger is used for
// application messages, the logger itself for request logging.
func New(serviceName string, opts Options) (*httplog.Logger, error) {
	const op = "logger.New"

	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		return nil, fmt.Errorf("%s: invalid log level %q: %w", op, opts.Level, err)
	}

	return httplog.NewLogger(serviceName, httplog.Options{
		LogLevel:         level,
		JSON:             opts.JSON,
		Concise:          opts.Concise,
		RequestHeaders:   !opts.Concise,
		MessageFieldName: "message",
		Writer:           writer(opts),
	}), nil
}

func writer(opts Options) io.Writer {
	if opts.File == "" {
		return os.Stdout
	}

	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxAge:     opts.MaxAgeDays,
		MaxBackups: 7,
	}
}
