package main

import (
	"encoding/json"
	"net/http"

	"github.com/Ashwini-Khunte/receipt-tracker/internal/api"
	"github.com/Ashwini-Khunte/receipt-tracker/internal/config"
	"github.com/Ashwini-Khunte/receipt-tracker/internal/infrastructure"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/lifecycle"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/module"
)

// Modules holds every mountable module the server exposes.
type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

// buildRouter creates the root router with health endpoints on the
// native mux, outside any module prefix.
func buildRouter(readiness lifecycle.ReadinessChecker) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !readiness.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})

	return router
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
