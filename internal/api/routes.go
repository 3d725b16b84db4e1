package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Ashwini-Khunte/receipt-tracker/internal/config"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	documentURL := func(id uuid.UUID) string {
		return cfg.API.DocumentURL(id.String())
	}

	routes.Register(
		mux,
		domain.Receipts.Handler(
			cfg.API.MaxUploadSizeBytes(),
			domain.Extraction,
			documentURL,
		).Routes(),
		domain.Extraction.Handler().Routes(),
	)
}
