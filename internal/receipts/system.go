package receipts

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ashwini-Khunte/receipt-tracker/pkg/pagination"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/storage"
)

// Dispatcher triggers asynchronous extraction for a stored receipt.
type Dispatcher interface {
	Dispatch(documentURL string, receiptID uuid.UUID)
}

// System defines the public contract for receipt domain operations.
type System interface {
	Handler(maxUploadSize int64, dispatcher Dispatcher, documentURL func(uuid.UUID) string) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Receipt], error)

	Find(ctx context.Context, id uuid.UUID) (*Receipt, error)
	Create(ctx context.Context, cmd CreateCommand) (*Receipt, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Download streams the stored receipt file.
	Download(ctx context.Context, id uuid.UUID) (*storage.DownloadResult, *Receipt, error)

	// UpdateStatus sets the receipt status without touching other fields.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Receipt, error)

	// ApplyExtraction writes extracted data onto a pending receipt and marks
	// it processed. Returns the updated receipt.
	ApplyExtraction(ctx context.Context, id uuid.UUID, data ExtractedData) (*Receipt, error)
}
