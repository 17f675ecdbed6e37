// Package http serves the shortener over plain HTTP: a welcome text, form
// and multipart submissions, and redirects for issued short codes.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	DefaultScheme       = "https"
	DefaultMaxBodyBytes = 1 << 20
)

type Options struct {
	// Scheme prefixes short links built from the request Host header.
	Scheme string
	// BaseURL, when set, replaces scheme and host in short links.
	BaseURL      string
	MaxBodyBytes int64
	// StrictURLs rejects submissions that are not absolute URLs with 400.
	StrictURLs     bool
	AllowedOrigins []string
	// DocsSpecPath enables /swagger/* and /docs/swagger.yml when set.
	DocsSpecPath string
}

// NewRouter mounts the link handler on every path and method. Anything it
// does not recognise answers 404.
func NewRouter(logger *httplog.Logger, useCase linkUseCase, opts Options) *chi.Mux {
	r := chi.NewRouter()

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Content-Type"},
			ExposedHeaders:   []string{"Location"},
			AllowCredentials: false,
			MaxAge:           86400,
		}))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	if opts.DocsSpecPath != "" {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/docs/swagger.yml"),
		))

		r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, opts.DocsSpecPath)
		})
	}

	h := newLinkHandler(useCase, logger.Logger, opts)

	r.Handle("/*", http.HandlerFunc(h.dispatch))
	r.NotFound(h.dispatch)
	r.MethodNotAllowed(h.dispatch)

	return r
}
