package extraction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Ashwini-Khunte/receipt-tracker/pkg/handlers"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/routes"
)

// Handler errors for trigger event validation.
var (
	ErrInvalidEvent = errors.New("invalid trigger event")
	ErrUnknownEvent = errors.New("unknown event name")
)

// Handler provides the HTTP endpoint for pipeline trigger events.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "extraction"),
	}
}

// Routes returns the route group definition for extraction endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/events",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Trigger},
		},
	}
}

// Trigger accepts a trigger event and dispatches a background pipeline run.
// The run outcome is not reported synchronously; callers observe progress
// through the receipt status.
func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	var event TriggerEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidEvent)
		return
	}

	if event.Name != EventExtractReceipt {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrUnknownEvent)
		return
	}

	if event.Data.URL == "" || event.Data.ReceiptID == uuid.Nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidEvent)
		return
	}

	h.sys.Dispatch(event.Data.URL, event.Data.ReceiptID)

	handlers.RespondJSON(w, http.StatusAccepted, map[string]string{
		"status":    "dispatched",
		"receiptId": event.Data.ReceiptID.String(),
	})
}
