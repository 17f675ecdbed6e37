package http

import (
	"mime"
	"net/http"
	"strings"
)

type intentKind int

const (
	intentNoRoute intentKind = iota
	intentWelcome
	intentResolve
	intentShortenForm
	intentShortenMultipart
)

// intent is what a request asks for, decided from its method, path and
// Content-Type alone. The body is not touched.
type intent struct {
	kind      intentKind
	shortCode string // intentResolve
	boundary  string // intentShortenMultipart; empty when missing or malformed
}

func classify(method, path, contentType string) intent {
	switch method {
	case http.MethodGet:
		if path == "/" {
			return intent{kind: intentWelcome}
		}
		return intent{kind: intentResolve, shortCode: strings.TrimPrefix(path, "/")}
	case http.MethodPost:
		if path != "/" {
			return intent{kind: intentNoRoute}
		}
		if boundary, ok := multipartBoundary(contentType); ok {
			return intent{kind: intentShortenMultipart, boundary: boundary}
		}
		return intent{kind: intentShortenForm}
	default:
		return intent{kind: intentNoRoute}
	}
}

// multipartBoundary reports whether contentType is multipart/form-data and
// returns its boundary parameter.
func multipartBoundary(contentType string) (string, bool) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if mediaType != "multipart/form-data" {
		return "", false
	}
	if err != nil {
		return "", true
	}

	return params["boundary"], true
}
