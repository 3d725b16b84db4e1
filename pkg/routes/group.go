package routes

import (
	"fmt"
	"net/http"
)

// Group collects routes under a shared prefix. Child groups nest, with
// prefixes concatenated outermost first.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register walks the groups and registers every route on mux using
// method-qualified patterns.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.register(mux, "")
	}
}

func (g Group) register(mux *http.ServeMux, base string) {
	prefix := base + g.Prefix

	for _, r := range g.Routes {
		mux.HandleFunc(fmt.Sprintf("%s %s%s", r.Method, prefix, r.Pattern), r.Handler)
	}
	for _, child := range g.Children {
		child.register(mux, prefix)
	}
}
