// Package usage reports metered events to an external usage tracking service.
package usage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// EventScan is recorded each time a receipt scan completes.
const EventScan = "scan"

// Event is a single metered usage record.
type Event struct {
	Event     string `json:"event"`
	CompanyID string `json:"companyId"`
	UserID    string `json:"userId"`
}

// System reports usage events.
type System interface {
	// Track records a usage event. Returns nil without reporting when
	// tracking is disabled.
	Track(ctx context.Context, event Event) error
}

type client struct {
	cfg    *Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a usage system from the given configuration. When no endpoint
// is configured, the returned system accepts events without reporting them.
func New(cfg *Config, logger *slog.Logger) System {
	return &client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.TimeoutDuration()},
		logger: logger.With("system", "usage"),
	}
}

func (c *client) Track(ctx context.Context, event Event) error {
	if !c.cfg.Enabled() {
		c.logger.Debug("usage tracking disabled, dropping event", "event", event.Event)
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode usage event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build usage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send usage event: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("usage service returned %d", resp.StatusCode)
	}

	c.logger.Debug("usage event tracked", "event", event.Event, "user", event.UserID)
	return nil
}
