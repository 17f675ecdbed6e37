package http

import (
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/render"
)

type outcomeKind int

const (
	outcomeNoRoute outcomeKind = iota
	outcomeWelcome
	outcomeShortened
	outcomeRedirect
	outcomeNotFound
	outcomeUnprocessable
	outcomeBadRequest
	outcomeInternalError
)

// outcome is the result of handling an intent. text carries the request host
// for outcomeWelcome, the short link for outcomeShortened and the long URL
// for outcomeRedirect.
type outcome struct {
	kind outcomeKind
	text string
}

func welcomeText(host string) string {
	return fmt.Sprintf(`
This is a URL shortening service.

To shorten a URL, POST it in the "shorten" field:

    curl -F'shorten=https://shorten.some/long/url' %[1]s

or as a URL-encoded form:

    curl -d'shorten=https://shorten.some/long/url' %[1]s

Visiting the returned link redirects to the original URL.
`, host)
}

func redirectText(longURL string) string {
	return fmt.Sprintf("You will be redirected to: %s. If not, click the link.", html.EscapeString(longURL))
}

// respond writes o to w. It is the only place that sets response status
// codes and headers.
func respond(w http.ResponseWriter, r *http.Request, o outcome) {
	switch o.kind {
	case outcomeWelcome:
		render.Status(r, http.StatusOK)
		render.PlainText(w, r, welcomeText(o.text))
	case outcomeShortened:
		render.Status(r, http.StatusOK)
		render.HTML(w, r, o.text+"\n")
	case outcomeRedirect:
		w.Header().Set("Location", o.text)
		render.Status(r, http.StatusMovedPermanently)
		render.HTML(w, r, redirectText(o.text))
	case outcomeNotFound, outcomeNoRoute:
		w.WriteHeader(http.StatusNotFound)
	case outcomeUnprocessable:
		w.WriteHeader(http.StatusUnprocessableEntity)
	case outcomeBadRequest:
		w.WriteHeader(http.StatusBadRequest)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}
