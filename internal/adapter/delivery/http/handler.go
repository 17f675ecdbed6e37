package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"

	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
)

// shortenField is the form field carrying the URL to shorten.
const shortenField = "shorten"

var (
	errFieldMissing       = errors.New("shorten field is missing")
	errMalformedMultipart = errors.New("malformed multipart body")
	errUnreadableBody     = errors.New("unreadable request body")
	errNotText            = errors.New("shorten field is not valid UTF-8 text")
)

type linkUseCase interface {
	Shorten(ctx context.Context, longURL string) (*entity.Link, error)
	Resolve(ctx context.Context, shortCode string) (*entity.Link, error)
}

type linkHandler struct {
	useCase      linkUseCase
	logger       *slog.Logger
	scheme       string
	baseURL      string
	maxBodyBytes int64
	validate     *validator.Validate // nil unless URLs are checked
}

func newLinkHandler(useCase linkUseCase, logger *slog.Logger, opts Options) *linkHandler {
	h := &linkHandler{
		useCase:      useCase,
		logger:       logger,
		scheme:       opts.Scheme,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		maxBodyBytes: opts.MaxBodyBytes,
	}
	if h.scheme == "" {
		h.scheme = DefaultScheme
	}
	if h.maxBodyBytes <= 0 {
		h.maxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.StrictURLs {
		h.validate = validator.New()
	}

	return h
}

func (h *linkHandler) dispatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	in := classify(r.Method, r.URL.Path, r.Header.Get("Content-Type"))
	respond(w, r, h.handle(r, in))
}

func (h *linkHandler) handle(r *http.Request, in intent) outcome {
	switch in.kind {
	case intentWelcome:
		return outcome{kind: outcomeWelcome, text: r.Host}
	case intentResolve:
		return h.resolve(r, in.shortCode)
	case intentShortenForm:
		longURL, err := formValue(r.Body)
		return h.shorten(r, longURL, err)
	case intentShortenMultipart:
		longURL, err := multipartValue(r.Body, in.boundary)
		return h.shorten(r, longURL, err)
	default:
		return outcome{kind: outcomeNoRoute}
	}
}

func (h *linkHandler) resolve(r *http.Request, shortCode string) outcome {
	link, err := h.useCase.Resolve(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			return outcome{kind: outcomeNotFound}
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
		return outcome{kind: outcomeInternalError}
	}

	return outcome{kind: outcomeRedirect, text: link.LongURL}
}

func (h *linkHandler) shorten(r *http.Request, longURL string, err error) outcome {
	ctx := r.Context()

	if err != nil {
		httplog.LogEntrySetField(ctx, "reason", slog.StringValue(err.Error()))
		return outcome{kind: outcomeUnprocessable}
	}

	if h.validate != nil {
		if err := h.validate.Var(longURL, "required,url"); err != nil {
			httplog.LogEntrySetField(ctx, "reason", slog.StringValue("shorten field is not an absolute URL"))
			return outcome{kind: outcomeBadRequest}
		}
	}

	link, err := h.useCase.Shorten(ctx, longURL)
	if err != nil {
		if errors.Is(err, usecase.ErrMaxRetriesExceeded) {
			h.logger.WarnContext(ctx, "short code space may be exhausted", slog.Any("err", err))
		}

		httplog.LogEntrySetField(ctx, "err", slog.AnyValue(err))
		return outcome{kind: outcomeInternalError}
	}

	return outcome{kind: outcomeShortened, text: h.shortLink(r, link.ShortCode)}
}

func (h *linkHandler) shortLink(r *http.Request, shortCode string) string {
	if h.baseURL != "" {
		return h.baseURL + "/" + shortCode
	}
	return fmt.Sprintf("%s://%s/%s", h.scheme, r.Host, shortCode)
}

// formValue decodes body as application/x-www-form-urlencoded and returns
// the last shorten value. Only '&' separates pairs, so a ';' stays inside a
// value.
func formValue(body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errUnreadableBody, err)
	}

	var (
		value string
		found bool
	)

	for _, pair := range strings.Split(string(data), "&") {
		if pair == "" {
			continue
		}

		key, val, _ := strings.Cut(pair, "=")
		if unescapeFormComponent(key) != shortenField {
			continue
		}

		value, found = unescapeFormComponent(val), true
	}

	if !found {
		return "", errFieldMissing
	}

	return value, nil
}

// unescapeFormComponent decodes '+' and percent escapes. Invalid escapes are
// kept as sent.
func unescapeFormComponent(s string) string {
	if unescaped, err := url.QueryUnescape(s); err == nil {
		return unescaped
	}
	return s
}

// multipartValue returns the text of the first part of a multipart/form-data
// body. That part must be named shorten.
func multipartValue(body io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", fmt.Errorf("%w: missing boundary", errMalformedMultipart)
	}

	part, err := multipart.NewReader(body, boundary).NextPart()
	if err != nil {
		return "", fmt.Errorf("%w: %w", errMalformedMultipart, err)
	}
	defer part.Close()

	if part.FormName() != shortenField {
		return "", errFieldMissing
	}

	data, err := io.ReadAll(part)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errUnreadableBody, err)
	}
	if !utf8.Valid(data) {
		return "", errNotText
	}

	return string(data), nil
}
