package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ashwini-Khunte/receipt-tracker/pkg/module"
)

func echoMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Path))
	})
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("root:" + r.URL.Path))
	})
	return mux
}

func TestNewPanicsOnInvalidPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"empty", ""},
		{"missing slash", "api"},
		{"multi-level", "/api/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) did not panic", tt.prefix)
				}
			}()
			module.New(tt.prefix, http.NewServeMux())
		})
	}
}

func TestModuleStripsPrefix(t *testing.T) {
	m := module.New("/api", echoMux(t))
	router := module.NewRouter()
	router.Mount(m)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/items", nil))

	if rec.Body.String() != "/items" {
		t.Errorf("inner path: got %q, want /items", rec.Body.String())
	}
}

func TestModulePrefixRootBecomesSlash(t *testing.T) {
	m := module.New("/api", echoMux(t))
	router := module.NewRouter()
	router.Mount(m)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api", nil))

	if rec.Body.String() != "root:/" {
		t.Errorf("inner path: got %q, want root:/", rec.Body.String())
	}
}

func TestRouterFallsBackToNative(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", echoMux(t)))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Body.String() != "ok" {
		t.Errorf("native response: got %q, want ok", rec.Body.String())
	}
}

func TestModuleMiddlewareOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("handler"))
	})

	m := module.New("/api", mux)
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("outer:"))
			next.ServeHTTP(w, r)
		})
	})
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("inner:"))
			next.ServeHTTP(w, r)
		})
	})

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest("GET", "/api", nil))

	if rec.Body.String() != "outer:inner:handler" {
		t.Errorf("order: got %q, want outer:inner:handler", rec.Body.String())
	}
}
