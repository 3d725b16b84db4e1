package pipeline

import (
	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// Run state keys. The saved-to-database flag is the network's termination
// condition: once set truthy it is never cleared for the run's lifetime.
const (
	KeyDocumentURL     = "document_url"
	KeyReceiptID       = "receipt_id"
	KeyScanResult      = "scan_result"
	KeySavedToDatabase = "saved-to-database"
	KeyReceipt         = "receipt"
)

// NewRunState seeds an empty run state with the trigger event payload.
func NewRunState(documentURL string, receiptID uuid.UUID) state.State {
	s := state.New(nil)
	s = s.Set(KeyDocumentURL, documentURL)
	s = s.Set(KeyReceiptID, receiptID)
	return s
}

// Saved reports whether the saved-to-database flag is set truthy.
func Saved(s state.State) bool {
	val, ok := s.Get(KeySavedToDatabase)
	if !ok {
		return false
	}
	saved, ok := val.(bool)
	return ok && saved
}

func documentURL(s state.State) (string, bool) {
	val, ok := s.Get(KeyDocumentURL)
	if !ok {
		return "", false
	}
	url, ok := val.(string)
	return url, ok && url != ""
}

func receiptID(s state.State) (uuid.UUID, bool) {
	val, ok := s.Get(KeyReceiptID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func scanResult(s state.State) (string, bool) {
	val, ok := s.Get(KeyScanResult)
	if !ok {
		return "", false
	}
	raw, ok := val.(string)
	return raw, ok && raw != ""
}
