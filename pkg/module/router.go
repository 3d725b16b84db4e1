package module

import (
	"net/http"
	"strings"
)

// Router routes requests to mounted modules by their first path segment.
// Paths that match no module fall through to a native ServeMux, which
// carries infrastructure endpoints like health checks.
type Router struct {
	mounts map[string]*Module
	native *http.ServeMux
}

func NewRouter() *Router {
	return &Router{
		mounts: map[string]*Module{},
		native: http.NewServeMux(),
	}
}

// HandleNative registers a pattern on the fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// Mount attaches a module at its prefix.
func (r *Router) Mount(m *Module) {
	r.mounts[m.prefix] = m
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := normalizePath(req)

	if m, ok := r.mounts[firstSegment(path)]; ok {
		m.Serve(w, req)
		return
	}

	r.native.ServeHTTP(w, req)
}

// firstSegment returns "/seg" for "/seg/rest", or the path itself when
// it has a single segment.
func firstSegment(path string) string {
	if i := strings.IndexByte(path[1:], '/'); i >= 0 {
		return path[:i+1]
	}
	return path
}

// normalizePath strips a trailing slash in place so "/api/" and "/api"
// route identically.
func normalizePath(req *http.Request) string {
	path := req.URL.Path
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
		req.URL.Path = path
	}
	return path
}
