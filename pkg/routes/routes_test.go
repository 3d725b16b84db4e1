package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ashwini-Khunte/receipt-tracker/pkg/routes"
)

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()

	handler := func(tag string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(tag))
		}
	}

	routes.Register(mux, routes.Group{
		Prefix: "/receipts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: handler("list")},
			{Method: "GET", Pattern: "/{id}", Handler: handler("find")},
		},
		Children: []routes.Group{
			{
				Prefix: "/admin",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/purge", Handler: handler("purge")},
				},
			},
		},
	})

	tests := []struct {
		name   string
		method string
		path   string
		want   string
	}{
		{"group route", "GET", "/receipts", "list"},
		{"path parameter", "GET", "/receipts/abc", "find"},
		{"nested child group", "POST", "/receipts/admin/purge", "purge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Body.String() != tt.want {
				t.Errorf("response: got %q, want %q", rec.Body.String(), tt.want)
			}
		})
	}
}

func TestRegisterMethodMismatch(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, routes.Group{
		Prefix: "/receipts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: func(w http.ResponseWriter, r *http.Request) {}},
		},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("DELETE", "/receipts", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rec.Code)
	}
}
