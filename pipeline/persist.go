package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/Ashwini-Khunte/receipt-tracker/pkg/formatting"
)

// LineItem is a single purchased item on a receipt.
type LineItem struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
}

// ReceiptFields is the full extracted field set the persistence tool writes.
// JSON tags match the structured output schema the scanning agent requests
// from the model.
type ReceiptFields struct {
	FileDisplayName   string     `json:"fileDisplayName"`
	MerchantName      string     `json:"merchantName"`
	MerchantAddress   string     `json:"merchantAddress"`
	MerchantContact   string     `json:"merchantContact"`
	TransactionDate   string     `json:"transactionDate"`
	TransactionAmount string     `json:"transactionAmount"`
	Currency          string     `json:"currency"`
	ReceiptSummary    string     `json:"receiptSummary"`
	ReceiptNumber     string     `json:"receiptNumber,omitempty"`
	InvoiceNumber     string     `json:"invoiceNumber,omitempty"`
	Items             []LineItem `json:"items"`
}

// Validate checks the schema before any side effect: required strings must be
// non-empty and item quantities and prices non-negative. Failures are
// permanent; retrying with the same input cannot succeed.
func (f *ReceiptFields) Validate() error {
	required := map[string]string{
		"fileDisplayName":   f.FileDisplayName,
		"merchantName":      f.MerchantName,
		"merchantAddress":   f.MerchantAddress,
		"merchantContact":   f.MerchantContact,
		"transactionDate":   f.TransactionDate,
		"transactionAmount": f.TransactionAmount,
		"currency":          f.Currency,
		"receiptSummary":    f.ReceiptSummary,
	}

	var missing []string
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrInvalidFields, strings.Join(missing, ", "))
	}

	for i, item := range f.Items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("%w: item %d has no name", ErrInvalidFields, i)
		}
		if item.Quantity < 0 || item.UnitPrice < 0 || item.TotalPrice < 0 {
			return fmt.Errorf("%w: item %d has negative quantity or price", ErrInvalidFields, i)
		}
	}

	return nil
}

// Outcome tags a persistence result.
type Outcome string

// Persistence outcomes.
const (
	OutcomeSuccess   Outcome = "Success"
	OutcomeFailed    Outcome = "Failed"
	OutcomeCancelled Outcome = "Cancelled"
)

// PersistResult is the tagged outcome the persistence tool hands back to the
// agent layer instead of raising retry-exhausted write failures.
type PersistResult struct {
	AddedToDB Outcome       `json:"addedToDb"`
	ReceiptID uuid.UUID     `json:"receiptId,omitempty"`
	Fields    ReceiptFields `json:"fields,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// PersistenceTool validates and writes extracted fields to the record store,
// then emits a usage event for the record's owning user. Both side effects
// are independently retried; the tracking call never runs when the write
// fails, and a tracking failure never undoes the committed write.
type PersistenceTool struct {
	records RecordWriter
	usage   UsageTracker
	backoff Backoff
	logger  *slog.Logger
}

// NewPersistenceTool binds the record store, usage tracker, and retry policy.
func NewPersistenceTool(rt *Runtime) *PersistenceTool {
	return &PersistenceTool{
		records: rt.Records,
		usage:   rt.Usage,
		backoff: rt.Tool,
		logger:  rt.logger().With("tool", "save-to-database"),
	}
}

// Name identifies the tool in logs.
func (t *PersistenceTool) Name() string { return "save-to-database" }

// Invoke validates the field set and performs the ordered side effects.
// Validation and configuration problems return an error; a write that
// exhausts its retries degrades to a Failed result value.
func (t *PersistenceTool) Invoke(ctx context.Context, id uuid.UUID, fields ReceiptFields) (PersistResult, error) {
	if t.records == nil {
		return PersistResult{}, fmt.Errorf("%w: persistence tool has no record store", ErrNotConfigured)
	}
	if err := fields.Validate(); err != nil {
		return PersistResult{}, err
	}

	userID, err := Do(ctx, t.backoff, func(ctx context.Context) (string, error) {
		return t.records.ApplyExtraction(ctx, id, fields)
	})
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return PersistResult{AddedToDB: OutcomeCancelled, ReceiptID: id, Error: err.Error()}, nil
		}
		t.logger.WarnContext(ctx, "record write failed", "receipt_id", id, "error", err)
		return PersistResult{AddedToDB: OutcomeFailed, ReceiptID: id, Error: err.Error()}, nil
	}

	t.track(ctx, id, userID)

	return PersistResult{
		AddedToDB: OutcomeSuccess,
		ReceiptID: id,
		Fields:    fields,
	}, nil
}

// track emits the usage event with retry. The record write has already
// committed, so exhaustion is logged and swallowed.
func (t *PersistenceTool) track(ctx context.Context, id uuid.UUID, userID string) {
	if t.usage == nil {
		return
	}

	_, err := Do(ctx, t.backoff, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, t.usage.Track(ctx, userID)
	})
	if err != nil {
		t.logger.WarnContext(
			ctx, "usage tracking failed after record write",
			"receipt_id", id,
			"user_id", userID,
			"error", err,
		)
	}
}

// DatabaseAgent owns the persistence tool. It parses the scanning agent's
// raw output, synthesizes the receipt summary through its own inference
// call, and invokes the tool. On success it sets the saved-to-database flag
// and the persisted record id in run state.
type DatabaseAgent struct {
	tool       *PersistenceTool
	summarizer Inferer
	backoff    Backoff
	logger     *slog.Logger
}

// NewDatabaseAgent creates the database agent from the runtime.
func NewDatabaseAgent(rt *Runtime) *DatabaseAgent {
	return &DatabaseAgent{
		tool:       NewPersistenceTool(rt),
		summarizer: rt.Summarizer,
		backoff:    rt.Tool,
		logger:     rt.logger().With("agent", "database"),
	}
}

func (a *DatabaseAgent) Name() string { return "Database Agent" }

func (a *DatabaseAgent) Description() string {
	return "Takes key information regarding receipts and saves it to the database."
}

// Execute fails fast when no extraction result exists in run state, so the
// persistence write can never precede a successful scan within a run.
func (a *DatabaseAgent) Execute(ctx context.Context, s state.State) (state.State, error) {
	raw, ok := scanResult(s)
	if !ok {
		return s, ErrMissingExtractionData
	}

	id, ok := receiptID(s)
	if !ok {
		return s, fmt.Errorf("%w: missing receipt id", ErrMissingExtractionData)
	}

	fields, err := formatting.Parse[ReceiptFields](raw)
	if err != nil {
		return s, fmt.Errorf("parse scan result: %w", err)
	}

	if err := a.enrich(ctx, &fields); err != nil {
		return s, err
	}

	result, err := a.tool.Invoke(ctx, id, fields)
	if err != nil {
		return s, fmt.Errorf("persistence tool: %w", err)
	}

	switch result.AddedToDB {
	case OutcomeSuccess:
		s = s.Set(KeySavedToDatabase, true)
		s = s.Set(KeyReceipt, result.ReceiptID)
		a.logger.InfoContext(ctx, "receipt persisted", "receipt_id", result.ReceiptID)
	case OutcomeCancelled:
		return s, fmt.Errorf("%w: %s", ErrCancelled, result.Error)
	default:
		a.logger.WarnContext(ctx, "persistence failed", "receipt_id", id, "error", result.Error)
	}

	return s, nil
}

// enrich fills the summary via inference and derives a display name when the
// scan output supplied neither.
func (a *DatabaseAgent) enrich(ctx context.Context, fields *ReceiptFields) error {
	if fields.FileDisplayName == "" && fields.MerchantName != "" {
		fields.FileDisplayName = strings.TrimSpace(
			fmt.Sprintf("%s %s", fields.MerchantName, fields.TransactionDate),
		)
	}

	if fields.ReceiptSummary != "" || a.summarizer == nil {
		return nil
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("serialize fields for summary: %w", err)
	}

	prompt := fmt.Sprintf("%s\n\nReceipt data:\n%s", summaryInstructions, payload)

	summary, err := Do(ctx, a.backoff, func(ctx context.Context) (string, error) {
		return a.summarizer.Chat(ctx, prompt)
	})
	if err != nil {
		return fmt.Errorf("summarize receipt: %w", err)
	}

	fields.ReceiptSummary = strings.TrimSpace(summary)
	return nil
}
