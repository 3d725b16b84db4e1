package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Ashwini-Khunte/receipt-tracker/pkg/formatting"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/middleware"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/pagination"
)

const (
	EnvAPIBasePath      = "RECEIPTS_API_BASE_PATH"
	EnvAPIMaxUploadSize = "RECEIPTS_API_MAX_UPLOAD_SIZE"
	EnvAPIPublicBaseURL = "RECEIPTS_API_PUBLIC_BASE_URL"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "RECEIPTS_CORS_ENABLED",
	Origins:          "RECEIPTS_CORS_ORIGINS",
	AllowedMethods:   "RECEIPTS_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "RECEIPTS_CORS_ALLOWED_HEADERS",
	AllowCredentials: "RECEIPTS_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "RECEIPTS_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "RECEIPTS_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "RECEIPTS_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, upload, CORS, and pagination settings.
// PublicBaseURL is the externally reachable base URL used to build document
// URLs handed to the extraction pipeline.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	PublicBaseURL string                `toml:"public_base_url"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 50 * 1024 * 1024 // 50MB fallback
	}
	return size
}

// DocumentURL builds the public download URL for a stored receipt.
func (c *APIConfig) DocumentURL(id string) string {
	base := strings.TrimSuffix(c.PublicBaseURL, "/")
	return fmt.Sprintf("%s%s/receipts/%s/download", base, c.BasePath, id)
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.PublicBaseURL != "" {
		c.PublicBaseURL = overlay.PublicBaseURL
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
	if c.PublicBaseURL == "" {
		c.PublicBaseURL = "http://localhost:8080"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvAPIPublicBaseURL); v != "" {
		c.PublicBaseURL = v
	}
}
