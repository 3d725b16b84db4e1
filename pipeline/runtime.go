package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Inferer is the narrow boundary around language-model inference. All
// non-determinism in the pipeline lives behind this interface; the routing
// and persistence layers are deterministic.
type Inferer interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// RecordWriter is the slice of the receipt record store the pipeline needs.
// ApplyExtraction overwrites the full extracted field set on the record,
// transitions its status to processed, and returns the owning user id.
// The write is a full-field overwrite, so repeating it with identical
// arguments is idempotent.
type RecordWriter interface {
	ApplyExtraction(ctx context.Context, id uuid.UUID, fields ReceiptFields) (string, error)
}

// UsageTracker emits a usage event for the given user after a successful
// persistence. Failures here must never undo a committed record write.
type UsageTracker interface {
	Track(ctx context.Context, userID string) error
}

// Runtime bundles the dependencies an extraction run requires. It is
// constructed by higher-level composition code and shared read-only
// across runs.
type Runtime struct {
	Scanner    Inferer
	Summarizer Inferer
	Records    RecordWriter
	Usage      UsageTracker
	Logger     *slog.Logger

	// Tool wraps each external call inside a tool handler.
	Tool Backoff
	// Run wraps whole network runs in the entry point.
	Run Backoff
	// MaxSteps bounds routing decisions per network run.
	MaxSteps int
}

func (rt *Runtime) logger() *slog.Logger {
	if rt.Logger != nil {
		return rt.Logger
	}
	return slog.New(slog.DiscardHandler)
}

type modelInferer struct {
	cfg gaconfig.AgentConfig
}

// NewInferer adapts a go-agents configuration to the Inferer boundary.
// The agent is constructed per call; go-agents agents are cheap and this
// keeps the runtime free of connection state.
func NewInferer(cfg gaconfig.AgentConfig) Inferer {
	return &modelInferer{cfg: cfg}
}

func (m *modelInferer) Chat(ctx context.Context, prompt string) (string, error) {
	a, err := agent.New(&m.cfg)
	if err != nil {
		return "", fmt.Errorf("%w: create agent: %w", ErrNotConfigured, err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}

	return resp.Content(), nil
}
