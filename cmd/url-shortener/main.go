package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	_ "go.uber.org/automaxprocs"

	"github.com/vadimbarashkov/shortlink/internal/app"
	"github.com/vadimbarashkov/shortlink/internal/config"
	"github.com/vadimbarashkov/shortlink/pkg/logger"
)

const serviceName = "url-shortener"

// Options are read from flags or SERVICE_* environment variables and take
// precedence over the config file.
type Options struct {
	Port     int    `help:"Port to listen on (default 3000)"                          short:"p"`
	Database string `help:"Path to the SQLite database file (default ./urls.db_3)"   short:"d"`
	Config   string `help:"Path to a YAML config file (default $CONFIG_PATH)"         short:"c"`
}

func loadConfig(options *Options) (*config.Config, error) {
	path := options.Config
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	cfg.Apply(config.Overrides{
		Port:     options.Port,
		Database: options.Database,
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		cfg, err := loadConfig(options)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		log, err := logger.New(serviceName, logger.Options{
			Level:      cfg.Log.Level,
			JSON:       cfg.Log.JSON,
			Concise:    cfg.Log.Concise,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		hooks.OnStart(func() {
			defer close(done)

			if err := app.Run(ctx, cfg, log); err != nil {
				log.Error("server failed", slog.Any("err", err))
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			log.Info("shutting down")
			cancel()
			<-done
		})
	})

	cli.Root().Use = serviceName
	cli.Root().Long = `Shortens URLs submitted as the "shorten" form field and
redirects short links to the original URL.

Settings come from the YAML file given by --config or CONFIG_PATH. The
--port and --database flags, or SERVICE_PORT and SERVICE_DATABASE, override it.`

	cli.Run()
}
