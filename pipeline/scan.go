package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// ExtractionTool issues one inference call per attempt instructing the model
// to return structured JSON for the document at the given URL. The raw model
// output is handed back untouched; field-level validation is deferred to the
// persistence tool's schema.
type ExtractionTool struct {
	inferer Inferer
	backoff Backoff
}

// NewExtractionTool binds an inference client and retry policy.
func NewExtractionTool(inferer Inferer, backoff Backoff) *ExtractionTool {
	return &ExtractionTool{inferer: inferer, backoff: backoff}
}

// Name identifies the tool in logs.
func (t *ExtractionTool) Name() string { return "parse-pdf" }

// Invoke runs the inference call under the tool retry policy. A missing
// inference client is a misconfiguration and fails immediately without
// consuming retry attempts.
func (t *ExtractionTool) Invoke(ctx context.Context, documentURL string) (string, error) {
	if t.inferer == nil {
		return "", fmt.Errorf("%w: extraction tool has no inference client", ErrNotConfigured)
	}

	prompt := fmt.Sprintf(
		"The following is a publicly accessible PDF receipt: %s\n\n%s",
		documentURL,
		scanningInstructions,
	)

	return Do(ctx, t.backoff, func(ctx context.Context) (string, error) {
		return t.inferer.Chat(ctx, prompt)
	})
}

// ScanningAgent owns the extraction tool. It reads the document URL from run
// state, invokes the tool, and stores the raw scan result for the database
// agent to consume.
type ScanningAgent struct {
	tool   *ExtractionTool
	logger *slog.Logger
}

// NewScanningAgent creates the scanning agent from the runtime.
func NewScanningAgent(rt *Runtime) *ScanningAgent {
	return &ScanningAgent{
		tool:   NewExtractionTool(rt.Scanner, rt.Tool),
		logger: rt.logger().With("agent", "receipt-scanning"),
	}
}

func (a *ScanningAgent) Name() string { return "Receipt Scanning Agent" }

func (a *ScanningAgent) Description() string {
	return "Processes receipt PDFs to extract key information such as merchant details, amounts, and line items."
}

// Execute invokes the extraction tool and records its output in run state.
func (a *ScanningAgent) Execute(ctx context.Context, s state.State) (state.State, error) {
	url, ok := documentURL(s)
	if !ok {
		return s, ErrMissingDocumentURL
	}

	result, err := a.tool.Invoke(ctx, url)
	if err != nil {
		return s, fmt.Errorf("extraction tool: %w", err)
	}

	a.logger.InfoContext(ctx, "document scanned", "url", url, "output_bytes", len(result))

	return s.Set(KeyScanResult, result), nil
}
