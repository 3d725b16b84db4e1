// Package module provides prefix-scoped HTTP routing. Each module owns
// a sub-router and middleware stack mounted under a single path segment.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Ashwini-Khunte/receipt-tracker/pkg/middleware"
)

// Module serves requests under its prefix through its own middleware
// stack, with the prefix stripped before the inner router sees the path.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System
}

// New creates a module at prefix, which must be a single path segment
// with a leading slash ("/api"). Invalid prefixes panic: they are wiring
// mistakes, not runtime conditions.
func New(prefix string, router http.Handler) *Module {
	switch {
	case prefix == "":
		panic(fmt.Errorf("module prefix cannot be empty"))
	case !strings.HasPrefix(prefix, "/"):
		panic(fmt.Errorf("module prefix must start with /: %s", prefix))
	case strings.Count(prefix, "/") != 1:
		panic(fmt.Errorf("module prefix must be a single segment: %s", prefix))
	}

	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Use appends middleware to the module's stack.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
}

// Handler returns the inner router wrapped in the middleware stack.
func (m *Module) Handler() http.Handler {
	return m.middleware.Apply(m.router)
}

// Serve dispatches the request to the inner router with the module
// prefix removed from the path.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	inner := strings.TrimPrefix(req.URL.Path, m.prefix)
	if inner == "" {
		inner = "/"
	}
	m.Handler().ServeHTTP(w, rebase(req, inner))
}

// rebase shallow-copies the request with a rewritten path, leaving the
// original untouched for outer handlers.
func rebase(req *http.Request, path string) *http.Request {
	clone := new(http.Request)
	*clone = *req
	clone.URL = new(url.URL)
	*clone.URL = *req.URL
	clone.URL.Path = path
	clone.URL.RawPath = ""
	return clone
}
