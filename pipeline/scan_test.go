package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Ashwini-Khunte/receipt-tracker/pipeline"
)

func TestExtractionToolInvoke(t *testing.T) {
	inferer := &fakeInferer{responses: []response{
		{content: validScanJSON},
	}}
	tool := pipeline.NewExtractionTool(inferer, testBackoff(3))

	result, err := tool.Invoke(context.Background(), "https://example.com/r.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != validScanJSON {
		t.Error("raw model output was modified")
	}

	if len(inferer.prompts) != 1 {
		t.Fatalf("prompts: got %d, want 1", len(inferer.prompts))
	}
	if !strings.Contains(inferer.prompts[0], "https://example.com/r.pdf") {
		t.Error("prompt missing document url")
	}
}

func TestExtractionToolRetriesInference(t *testing.T) {
	inferer := &fakeInferer{responses: []response{
		{err: errors.New("model unavailable")},
		{err: errors.New("model unavailable")},
		{content: validScanJSON},
	}}
	tool := pipeline.NewExtractionTool(inferer, testBackoff(3))

	result, err := tool.Invoke(context.Background(), "https://example.com/r.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != validScanJSON {
		t.Error("expected scan output after retries")
	}
	if inferer.callCount() != 3 {
		t.Errorf("inference calls: got %d, want 3", inferer.callCount())
	}
}

func TestExtractionToolNotConfigured(t *testing.T) {
	tool := pipeline.NewExtractionTool(nil, testBackoff(3))

	_, err := tool.Invoke(context.Background(), "https://example.com/r.pdf")
	if !errors.Is(err, pipeline.ErrNotConfigured) {
		t.Errorf("error: got %v, want ErrNotConfigured", err)
	}
}

func TestScanningAgentExecute(t *testing.T) {
	inferer := &fakeInferer{responses: []response{
		{content: validScanJSON},
	}}
	rt := validRuntime(inferer, &fakeRecords{}, &fakeUsage{})
	agent := pipeline.NewScanningAgent(rt)

	s := pipeline.NewRunState("https://example.com/r.pdf", uuid.New())
	s, err := agent.Execute(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	val, ok := s.Get(pipeline.KeyScanResult)
	if !ok {
		t.Fatal("scan result not stored in run state")
	}
	if val.(string) != validScanJSON {
		t.Error("stored scan result does not match model output")
	}
}

func TestScanningAgentMissingDocumentURL(t *testing.T) {
	rt := validRuntime(&fakeInferer{}, &fakeRecords{}, &fakeUsage{})
	agent := pipeline.NewScanningAgent(rt)

	s := pipeline.NewRunState("", uuid.New())
	_, err := agent.Execute(context.Background(), s)
	if !errors.Is(err, pipeline.ErrMissingDocumentURL) {
		t.Errorf("error: got %v, want ErrMissingDocumentURL", err)
	}
}
