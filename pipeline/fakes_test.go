package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ashwini-Khunte/receipt-tracker/pipeline"
)

// fakeInferer returns canned responses in order, cycling errors before
// successes to exercise retry paths.
type fakeInferer struct {
	mu        sync.Mutex
	responses []response
	calls     int
	prompts   []string
}

type response struct {
	content string
	err     error
}

func (f *fakeInferer) Chat(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)
	f.calls++

	if len(f.responses) == 0 {
		return "", nil
	}

	r := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return r.content, r.err
}

func (f *fakeInferer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRecords struct {
	mu     sync.Mutex
	userID string
	errs   []error
	calls  int
	last   pipeline.ReceiptFields
	lastID uuid.UUID
}

func (f *fakeRecords) ApplyExtraction(ctx context.Context, id uuid.UUID, fields pipeline.ReceiptFields) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}

	f.last = fields
	f.lastID = id
	return f.userID, nil
}

func (f *fakeRecords) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeUsage struct {
	mu    sync.Mutex
	errs  []error
	calls int
	users []string
}

func (f *fakeUsage) Track(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.users = append(f.users, userID)

	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func (f *fakeUsage) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// instantSleep records requested delays without waiting.
type instantSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *instantSleep) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

func testBackoff(attempts int) pipeline.Backoff {
	return pipeline.Backoff{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		Sleep: func(ctx context.Context, d time.Duration) error {
			return nil
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const validScanJSON = `{
	"fileDisplayName": "Acme Store 2024-03-15",
	"merchantName": "Acme Store",
	"merchantAddress": "1 Main St, Springfield",
	"merchantContact": "555-0100",
	"transactionDate": "2024-03-15",
	"transactionAmount": "12.50",
	"currency": "USD",
	"receiptSummary": "Groceries at Acme Store on 2024-03-15 totaling 12.50 USD.",
	"items": [
		{"name": "Apples", "quantity": 2, "unitPrice": 3.25, "totalPrice": 6.50},
		{"name": "Bread", "quantity": 1, "unitPrice": 6.00, "totalPrice": 6.00}
	]
}`

func validRuntime(inferer *fakeInferer, records *fakeRecords, usage *fakeUsage) *pipeline.Runtime {
	return &pipeline.Runtime{
		Scanner:    inferer,
		Summarizer: inferer,
		Records:    records,
		Usage:      usage,
		Logger:     testLogger(),
		Tool:       testBackoff(3),
		Run:        testBackoff(5),
		MaxSteps:   6,
	}
}
