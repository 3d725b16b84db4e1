// Package routes declares HTTP endpoints as data so handlers can list
// their routes and register them against a mux in one place.
package routes

import "net/http"

// Route pairs a method and pattern with its handler. Pattern is relative
// to the enclosing group's prefix.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}
