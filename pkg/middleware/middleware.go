// Package middleware manages an ordered HTTP middleware stack and
// provides the logging and CORS middleware used by API modules.
package middleware

import (
	"net/http"
	"slices"
)

// System accumulates middleware and applies the stack to a handler.
type System interface {
	Use(mw func(http.Handler) http.Handler)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	layers []func(http.Handler) http.Handler
}

// New returns an empty middleware stack.
func New() System {
	return &stack{}
}

func (s *stack) Use(fn func(http.Handler) http.Handler) {
	s.layers = append(s.layers, fn)
}

// Apply wraps handler in registration order: the first Use call becomes
// the outermost layer.
func (s *stack) Apply(handler http.Handler) http.Handler {
	for _, layer := range slices.Backward(s.layers) {
		handler = layer(handler)
	}
	return handler
}
