package receipts

import (
	"encoding/json"
	"net/url"

	"github.com/Ashwini-Khunte/receipt-tracker/pkg/query"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "receipts", "r").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("filename", "Filename").
	Project("file_display_name", "FileDisplayName").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("status", "Status").
	Project("merchant_name", "MerchantName").
	Project("merchant_address", "MerchantAddress").
	Project("merchant_contact", "MerchantContact").
	Project("transaction_date", "TransactionDate").
	Project("transaction_amount", "TransactionAmount").
	Project("currency", "Currency").
	Project("receipt_number", "ReceiptNumber").
	Project("invoice_number", "InvoiceNumber").
	Project("receipt_summary", "ReceiptSummary").
	Project("items", "Items").
	Project("uploaded_at", "UploadedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for receipt queries.
// Nil fields are ignored. UserID, Status, ContentType, and Currency use exact
// matching. Filename and MerchantName use case-insensitive contains matching.
type Filters struct {
	UserID       *string `json:"user_id,omitempty"`
	Status       *string `json:"status,omitempty"`
	Filename     *string `json:"filename,omitempty"`
	ContentType  *string `json:"content_type,omitempty"`
	MerchantName *string `json:"merchant_name,omitempty"`
	Currency     *string `json:"currency,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("UserID", f.UserID).
		WhereEquals("Status", f.Status).
		WhereContains("Filename", f.Filename).
		WhereEquals("ContentType", f.ContentType).
		WhereContains("MerchantName", f.MerchantName).
		WhereEquals("Currency", f.Currency)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if u := values.Get("user_id"); u != "" {
		f.UserID = &u
	}

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	if ct := values.Get("content_type"); ct != "" {
		f.ContentType = &ct
	}

	if mn := values.Get("merchant_name"); mn != "" {
		f.MerchantName = &mn
	}

	if cu := values.Get("currency"); cu != "" {
		f.Currency = &cu
	}

	return f
}

func scanReceipt(s repository.Scanner) (Receipt, error) {
	var (
		r     Receipt
		items []byte
	)

	err := s.Scan(
		&r.ID,
		&r.UserID,
		&r.Filename,
		&r.FileDisplayName,
		&r.ContentType,
		&r.SizeBytes,
		&r.PageCount,
		&r.StorageKey,
		&r.Status,
		&r.MerchantName,
		&r.MerchantAddress,
		&r.MerchantContact,
		&r.TransactionDate,
		&r.TransactionAmount,
		&r.Currency,
		&r.ReceiptNumber,
		&r.InvoiceNumber,
		&r.ReceiptSummary,
		&items,
		&r.UploadedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return r, err
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &r.Items); err != nil {
			return r, err
		}
	}

	return r, nil
}
