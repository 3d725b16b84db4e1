// Package receipts implements the receipt domain. It provides types, data
// access, and business logic for receipt upload, metadata management, blob
// storage integration, and application of extracted receipt data.
package receipts

import (
	"time"

	"github.com/google/uuid"
)

// Receipt statuses.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

// LineItem is a single purchased item extracted from a receipt.
type LineItem struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
}

// Receipt represents an uploaded receipt with its metadata, blob storage
// reference, and any extracted transaction data. Extraction fields are nil
// until the receipt has been processed.
type Receipt struct {
	ID                uuid.UUID  `json:"id"`
	UserID            string     `json:"user_id"`
	Filename          string     `json:"filename"`
	FileDisplayName   *string    `json:"file_display_name"`
	ContentType       string     `json:"content_type"`
	SizeBytes         int64      `json:"size_bytes"`
	PageCount         *int       `json:"page_count"`
	StorageKey        string     `json:"storage_key"`
	Status            string     `json:"status"`
	MerchantName      *string    `json:"merchant_name"`
	MerchantAddress   *string    `json:"merchant_address"`
	MerchantContact   *string    `json:"merchant_contact"`
	TransactionDate   *string    `json:"transaction_date"`
	TransactionAmount *float64   `json:"transaction_amount"`
	Currency          *string    `json:"currency"`
	ReceiptNumber     *string    `json:"receipt_number"`
	InvoiceNumber     *string    `json:"invoice_number"`
	ReceiptSummary    *string    `json:"receipt_summary"`
	Items             []LineItem `json:"items"`
	UploadedAt        time.Time  `json:"uploaded_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CreateCommand carries the data needed to upload and register a new receipt.
// Data holds the raw file bytes. PageCount is optional and may be extracted
// by the caller via pdfcpu; nil values are stored as NULL.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	UserID      string
	PageCount   *int
}

// ExtractedData carries the structured fields produced by the extraction
// pipeline, applied to a receipt via ApplyExtraction.
type ExtractedData struct {
	FileDisplayName   string
	MerchantName      string
	MerchantAddress   string
	MerchantContact   string
	TransactionDate   string
	TransactionAmount float64
	Currency          string
	ReceiptNumber     string
	InvoiceNumber     string
	ReceiptSummary    string
	Items             []LineItem
}

// BatchResult reports the outcome of a single file within a batch upload.
// On success, Receipt is populated and Error is empty.
// On failure, Error describes the problem and Receipt is nil.
type BatchResult struct {
	Receipt  *Receipt `json:"receipt,omitempty"`
	Filename string   `json:"filename"`
	Error    string   `json:"error,omitempty"`
}
