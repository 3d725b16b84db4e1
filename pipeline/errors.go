// Package pipeline implements the receipt extraction workflow: a routing
// network that moves a single run through a scanning agent and a database
// agent, with shared run state deciding when the run is complete. External
// calls (inference, record writes, usage tracking) are wrapped in a
// retry-with-backoff executor; persistence is idempotent so agents may be
// invoked more than once per run without corrupting the record.
package pipeline

import "errors"

// Sentinel errors for pipeline operations.
var (
	// ErrNotConfigured indicates a tool was invoked without its inference
	// client. This is a deployment misconfiguration, never retried.
	ErrNotConfigured = errors.New("pipeline not configured")

	// ErrMissingDocumentURL indicates the run state carries no document URL.
	ErrMissingDocumentURL = errors.New("missing document url in run state")

	// ErrMissingExtractionData indicates the persistence step was reached
	// before any extraction result was available in run state.
	ErrMissingExtractionData = errors.New("missing extraction data in run state")

	// ErrInvalidFields indicates the extracted field set failed schema
	// validation. Retrying with the same input cannot succeed.
	ErrInvalidFields = errors.New("invalid receipt fields")

	// ErrCancelled indicates the run was aborted by context cancellation.
	ErrCancelled = errors.New("run cancelled")

	// ErrRunIncomplete indicates the network exhausted its step budget
	// without the saved-to-database flag being set.
	ErrRunIncomplete = errors.New("network run incomplete")
)

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks an error as non-retryable. The backoff executor returns
// it immediately instead of consuming further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err carries a non-retryable marker, either via
// Permanent or by wrapping one of the permanent pipeline sentinels.
func IsPermanent(err error) bool {
	var p *permanentError
	if errors.As(err, &p) {
		return true
	}
	return errors.Is(err, ErrNotConfigured) ||
		errors.Is(err, ErrMissingDocumentURL) ||
		errors.Is(err, ErrMissingExtractionData) ||
		errors.Is(err, ErrInvalidFields)
}
