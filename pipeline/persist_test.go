package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Ashwini-Khunte/receipt-tracker/pipeline"
)

func validFields() pipeline.ReceiptFields {
	return pipeline.ReceiptFields{
		FileDisplayName:   "Acme Store 2024-03-15",
		MerchantName:      "Acme Store",
		MerchantAddress:   "1 Main St, Springfield",
		MerchantContact:   "555-0100",
		TransactionDate:   "2024-03-15",
		TransactionAmount: "12.50",
		Currency:          "USD",
		ReceiptSummary:    "Groceries at Acme Store.",
		Items: []pipeline.LineItem{
			{Name: "Apples", Quantity: 2, UnitPrice: 3.25, TotalPrice: 6.50},
		},
	}
}

func TestReceiptFieldsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*pipeline.ReceiptFields)
		wantErr bool
	}{
		{
			name:   "valid fields",
			mutate: func(f *pipeline.ReceiptFields) {},
		},
		{
			name:    "missing merchant name",
			mutate:  func(f *pipeline.ReceiptFields) { f.MerchantName = "" },
			wantErr: true,
		},
		{
			name:    "whitespace only currency",
			mutate:  func(f *pipeline.ReceiptFields) { f.Currency = "   " },
			wantErr: true,
		},
		{
			name:    "item without name",
			mutate:  func(f *pipeline.ReceiptFields) { f.Items[0].Name = "" },
			wantErr: true,
		},
		{
			name:    "negative item price",
			mutate:  func(f *pipeline.ReceiptFields) { f.Items[0].UnitPrice = -1 },
			wantErr: true,
		},
		{
			name:   "empty items allowed",
			mutate: func(f *pipeline.ReceiptFields) { f.Items = nil },
		},
		{
			name: "optional numbers allowed empty",
			mutate: func(f *pipeline.ReceiptFields) {
				f.ReceiptNumber = ""
				f.InvoiceNumber = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(&f)

			err := f.Validate()
			if tt.wantErr && !errors.Is(err, pipeline.ErrInvalidFields) {
				t.Errorf("error: got %v, want ErrInvalidFields", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPersistenceToolValidationFailureNoWrite(t *testing.T) {
	records := &fakeRecords{userID: "user-1"}
	usage := &fakeUsage{}
	rt := validRuntime(&fakeInferer{}, records, usage)
	tool := pipeline.NewPersistenceTool(rt)

	fields := validFields()
	fields.MerchantName = ""

	_, err := tool.Invoke(context.Background(), uuid.New(), fields)
	if !errors.Is(err, pipeline.ErrInvalidFields) {
		t.Errorf("error: got %v, want ErrInvalidFields", err)
	}
	if records.callCount() != 0 {
		t.Errorf("record writes: got %d, want 0 (no side effect before validation)", records.callCount())
	}
	if usage.callCount() != 0 {
		t.Errorf("usage events: got %d, want 0", usage.callCount())
	}
}

func TestPersistenceToolSuccess(t *testing.T) {
	id := uuid.New()
	records := &fakeRecords{userID: "user-9"}
	usage := &fakeUsage{}
	rt := validRuntime(&fakeInferer{}, records, usage)
	tool := pipeline.NewPersistenceTool(rt)

	result, err := tool.Invoke(context.Background(), id, validFields())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.AddedToDB != pipeline.OutcomeSuccess {
		t.Errorf("outcome: got %v, want Success", result.AddedToDB)
	}
	if result.ReceiptID != id {
		t.Errorf("receipt id: got %v, want %v", result.ReceiptID, id)
	}
	if len(usage.users) != 1 || usage.users[0] != "user-9" {
		t.Errorf("tracked users: got %v, want [user-9]", usage.users)
	}
}

func TestPersistenceToolIdempotentDoubleInvoke(t *testing.T) {
	id := uuid.New()
	records := &fakeRecords{userID: "user-2"}
	rt := validRuntime(&fakeInferer{}, records, &fakeUsage{})
	tool := pipeline.NewPersistenceTool(rt)

	fields := validFields()
	first, err := tool.Invoke(context.Background(), id, fields)
	if err != nil {
		t.Fatalf("first invoke: %v", err)
	}
	second, err := tool.Invoke(context.Background(), id, fields)
	if err != nil {
		t.Fatalf("second invoke: %v", err)
	}

	if first.AddedToDB != pipeline.OutcomeSuccess || second.AddedToDB != pipeline.OutcomeSuccess {
		t.Error("repeated invocation with identical input should succeed both times")
	}
	if records.lastID != id {
		t.Errorf("record id: got %v, want %v", records.lastID, id)
	}
}

func TestPersistenceToolWriteExhaustionDegradesToFailed(t *testing.T) {
	records := &fakeRecords{errs: []error{
		errors.New("db down"), errors.New("db down"), errors.New("db down"),
	}}
	usage := &fakeUsage{}
	rt := validRuntime(&fakeInferer{}, records, usage)
	tool := pipeline.NewPersistenceTool(rt)

	result, err := tool.Invoke(context.Background(), uuid.New(), validFields())
	if err != nil {
		t.Fatalf("write exhaustion should return a result value, got error: %v", err)
	}

	if result.AddedToDB != pipeline.OutcomeFailed {
		t.Errorf("outcome: got %v, want Failed", result.AddedToDB)
	}
	if records.callCount() != 3 {
		t.Errorf("record writes: got %d, want 3", records.callCount())
	}
	if usage.callCount() != 0 {
		t.Errorf("usage events: got %d, want 0 (never tracked on failed write)", usage.callCount())
	}
}

func TestPersistenceToolTrackingFailureDoesNotUndoWrite(t *testing.T) {
	id := uuid.New()
	records := &fakeRecords{userID: "user-3"}
	usage := &fakeUsage{errs: []error{
		errors.New("usage down"), errors.New("usage down"), errors.New("usage down"),
	}}
	rt := validRuntime(&fakeInferer{}, records, usage)
	tool := pipeline.NewPersistenceTool(rt)

	result, err := tool.Invoke(context.Background(), id, validFields())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.AddedToDB != pipeline.OutcomeSuccess {
		t.Errorf("outcome: got %v, want Success despite tracking failure", result.AddedToDB)
	}
	if usage.callCount() != 3 {
		t.Errorf("tracking attempts: got %d, want 3 (retried then swallowed)", usage.callCount())
	}
}

func TestDatabaseAgentMissingScanResult(t *testing.T) {
	rt := validRuntime(&fakeInferer{}, &fakeRecords{}, &fakeUsage{})
	agent := pipeline.NewDatabaseAgent(rt)

	s := pipeline.NewRunState("https://example.com/r.pdf", uuid.New())
	_, err := agent.Execute(context.Background(), s)
	if !errors.Is(err, pipeline.ErrMissingExtractionData) {
		t.Errorf("error: got %v, want ErrMissingExtractionData", err)
	}
}

func TestDatabaseAgentSetsSavedFlag(t *testing.T) {
	id := uuid.New()
	records := &fakeRecords{userID: "user-4"}
	rt := validRuntime(&fakeInferer{}, records, &fakeUsage{})
	agent := pipeline.NewDatabaseAgent(rt)

	s := pipeline.NewRunState("https://example.com/r.pdf", id)
	s = s.Set(pipeline.KeyScanResult, validScanJSON)

	s, err := agent.Execute(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !pipeline.Saved(s) {
		t.Error("saved-to-database flag not set")
	}
	if records.last.MerchantName != "Acme Store" {
		t.Errorf("merchant: got %q, want %q", records.last.MerchantName, "Acme Store")
	}
}

func TestDatabaseAgentFailedWriteLeavesStateRetryable(t *testing.T) {
	id := uuid.New()
	records := &fakeRecords{errs: []error{
		errors.New("db down"), errors.New("db down"), errors.New("db down"),
	}}
	rt := validRuntime(&fakeInferer{}, records, &fakeUsage{})
	agent := pipeline.NewDatabaseAgent(rt)

	s := pipeline.NewRunState("https://example.com/r.pdf", id)
	s = s.Set(pipeline.KeyScanResult, validScanJSON)

	s, err := agent.Execute(context.Background(), s)
	if err != nil {
		t.Fatalf("failed write should not error the agent: %v", err)
	}

	if pipeline.Saved(s) {
		t.Error("saved-to-database flag must not be set after a failed write")
	}
	if _, ok := s.Get(pipeline.KeyScanResult); !ok {
		t.Error("scan result must survive a failed write for the next routing step")
	}
}

func TestDatabaseAgentSynthesizesSummary(t *testing.T) {
	scan := `{
		"fileDisplayName": "Acme Store 2024-03-15",
		"merchantName": "Acme Store",
		"merchantAddress": "1 Main St",
		"merchantContact": "555-0100",
		"transactionDate": "2024-03-15",
		"transactionAmount": "12.50",
		"currency": "USD",
		"receiptSummary": "",
		"items": []
	}`

	records := &fakeRecords{userID: "user-5"}
	summarizer := &fakeInferer{responses: []response{
		{content: "Acme Store purchase on 2024-03-15 for 12.50 USD."},
	}}

	rt := validRuntime(&fakeInferer{}, records, &fakeUsage{})
	rt.Summarizer = summarizer
	agent := pipeline.NewDatabaseAgent(rt)

	s := pipeline.NewRunState("https://example.com/r.pdf", uuid.New())
	s = s.Set(pipeline.KeyScanResult, scan)

	if _, err := agent.Execute(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if records.last.ReceiptSummary != "Acme Store purchase on 2024-03-15 for 12.50 USD." {
		t.Errorf("summary not synthesized: got %q", records.last.ReceiptSummary)
	}
	if summarizer.callCount() != 1 {
		t.Errorf("summarizer calls: got %d, want 1", summarizer.callCount())
	}
}
