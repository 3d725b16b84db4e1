// Package extraction exposes the receipt extraction pipeline as a domain
// system. It accepts trigger events over HTTP, runs the pipeline against the
// receipt store, and reports usage on completed scans.
package extraction

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ashwini-Khunte/receipt-tracker/internal/receipts"
	"github.com/Ashwini-Khunte/receipt-tracker/internal/usage"
	"github.com/Ashwini-Khunte/receipt-tracker/pipeline"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/lifecycle"
)

// EventExtractReceipt names the trigger event that starts a pipeline run.
const EventExtractReceipt = "EXTRACT_DATA_FROM_PDF_AND_SAVE_TO_DATABASE"

// statusUpdateTimeout bounds the failed-status write that follows an
// exhausted run; it runs outside the (possibly cancelled) run context.
const statusUpdateTimeout = 10 * time.Second

// TriggerEvent is the wire format accepted by the events endpoint.
type TriggerEvent struct {
	Name string           `json:"name"`
	Data TriggerEventData `json:"data"`
}

// TriggerEventData carries the document location and target receipt.
type TriggerEventData struct {
	URL       string    `json:"url"`
	ReceiptID uuid.UUID `json:"receiptId"`
}

// System defines the public contract for extraction operations.
type System interface {
	Handler() *Handler

	// Dispatch starts a pipeline run in the background on the lifecycle
	// context. Run failures are logged; the receipt stays pending.
	Dispatch(documentURL string, receiptID uuid.UUID)

	// Process runs the pipeline synchronously and returns the persisted
	// receipt id.
	Process(ctx context.Context, documentURL string, receiptID uuid.UUID) (uuid.UUID, error)
}

type system struct {
	runtime *pipeline.Runtime
	records receipts.System
	lc      *lifecycle.Coordinator
	logger  *slog.Logger
	running sync.WaitGroup
}

// New creates an extraction system that persists through the given receipt
// store and reports scans to the usage system. Background runs derive from
// the lifecycle context and are drained on shutdown.
func New(
	rt *pipeline.Runtime,
	records receipts.System,
	usages usage.System,
	lc *lifecycle.Coordinator,
	logger *slog.Logger,
) System {
	log := logger.With("system", "extraction")

	rt.Records = &recordAdapter{records: records}
	rt.Usage = &usageAdapter{usage: usages}
	rt.Logger = log

	s := &system{
		runtime: rt,
		records: records,
		lc:      lc,
		logger:  log,
	}

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		s.running.Wait()
	})

	return s
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *system) Dispatch(documentURL string, receiptID uuid.UUID) {
	s.running.Go(func() {
		_, err := s.Process(s.lc.Context(), documentURL, receiptID)
		if err == nil {
			return
		}

		s.logger.Error(
			"background extraction failed",
			"receipt", receiptID,
			"error", err,
		)

		// Shutdown cancellation leaves the receipt pending so it can be
		// re-triggered; genuine run exhaustion marks it failed.
		if errors.Is(err, pipeline.ErrCancelled) {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), statusUpdateTimeout)
		defer cancel()

		if _, err := s.records.UpdateStatus(ctx, receiptID, receipts.StatusFailed); err != nil {
			s.logger.Error("failed-status update failed", "receipt", receiptID, "error", err)
		}
	})
}

func (s *system) Process(ctx context.Context, documentURL string, receiptID uuid.UUID) (uuid.UUID, error) {
	s.logger.Info("extraction started", "receipt", receiptID, "url", documentURL)

	id, err := pipeline.Execute(ctx, s.runtime, documentURL, receiptID)
	if err != nil {
		return uuid.Nil, err
	}

	s.logger.Info("extraction completed", "receipt", id)
	return id, nil
}
