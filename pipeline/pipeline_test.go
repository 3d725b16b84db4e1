package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Ashwini-Khunte/receipt-tracker/pipeline"
)

func TestExecuteEndToEnd(t *testing.T) {
	id := uuid.New()
	inferer := &fakeInferer{responses: []response{
		{content: validScanJSON},
	}}
	records := &fakeRecords{userID: "user-1"}
	usage := &fakeUsage{}

	rt := validRuntime(inferer, records, usage)

	got, err := pipeline.Execute(context.Background(), rt, "https://example.com/r.pdf", id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != id {
		t.Errorf("receipt id: got %v, want %v", got, id)
	}
	if records.last.MerchantName != "Acme Store" {
		t.Errorf("merchant: got %q, want %q", records.last.MerchantName, "Acme Store")
	}
	if records.last.TransactionAmount != "12.50" {
		t.Errorf("amount: got %q, want %q", records.last.TransactionAmount, "12.50")
	}
	if records.last.Currency != "USD" {
		t.Errorf("currency: got %q, want %q", records.last.Currency, "USD")
	}
	if len(usage.users) != 1 || usage.users[0] != "user-1" {
		t.Errorf("tracked users: got %v, want [user-1]", usage.users)
	}
}

func TestExecuteEmptyDocumentURL(t *testing.T) {
	rt := validRuntime(&fakeInferer{}, &fakeRecords{}, &fakeUsage{})

	_, err := pipeline.Execute(context.Background(), rt, "", uuid.New())
	if !errors.Is(err, pipeline.ErrMissingDocumentURL) {
		t.Errorf("error: got %v, want ErrMissingDocumentURL", err)
	}
}

func TestExecuteRetriesWholeRun(t *testing.T) {
	id := uuid.New()
	// First run fails inference through its whole tool budget; the second
	// run's scan succeeds.
	inferer := &fakeInferer{responses: []response{
		{err: errors.New("model unavailable")},
		{err: errors.New("model unavailable")},
		{err: errors.New("model unavailable")},
		{content: validScanJSON},
	}}
	records := &fakeRecords{userID: "user-1"}

	rt := validRuntime(inferer, records, &fakeUsage{})

	got, err := pipeline.Execute(context.Background(), rt, "https://example.com/r.pdf", id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != id {
		t.Errorf("receipt id: got %v, want %v", got, id)
	}
	if records.callCount() != 1 {
		t.Errorf("record writes: got %d, want 1", records.callCount())
	}
}

func TestExecuteRunBudgetExhausted(t *testing.T) {
	inferer := &fakeInferer{responses: []response{
		{err: errors.New("model unavailable")},
	}}

	rt := validRuntime(inferer, &fakeRecords{}, &fakeUsage{})
	rt.Tool = testBackoff(2)
	rt.Run = testBackoff(2)

	_, err := pipeline.Execute(context.Background(), rt, "https://example.com/r.pdf", uuid.New())
	if err == nil {
		t.Fatal("expected error after run budget exhaustion")
	}
	// 2 runs x 2 tool attempts each.
	if inferer.callCount() != 4 {
		t.Errorf("inference calls: got %d, want 4", inferer.callCount())
	}
}

func TestExecuteCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rt := validRuntime(&fakeInferer{}, &fakeRecords{}, &fakeUsage{})

	_, err := pipeline.Execute(ctx, rt, "https://example.com/r.pdf", uuid.New())
	if !errors.Is(err, pipeline.ErrCancelled) {
		t.Errorf("error: got %v, want ErrCancelled", err)
	}
}
