package extraction

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Ashwini-Khunte/receipt-tracker/internal/receipts"
	"github.com/Ashwini-Khunte/receipt-tracker/internal/usage"
	"github.com/Ashwini-Khunte/receipt-tracker/pipeline"
)

// recordAdapter bridges the pipeline's record boundary onto the receipt system.
type recordAdapter struct {
	records receipts.System
}

func (a *recordAdapter) ApplyExtraction(ctx context.Context, id uuid.UUID, fields pipeline.ReceiptFields) (string, error) {
	amount, err := parseAmount(fields.TransactionAmount)
	if err != nil {
		// Malformed amounts cannot be fixed by retrying the write.
		return "", pipeline.Permanent(err)
	}

	items := make([]receipts.LineItem, len(fields.Items))
	for i, item := range fields.Items {
		items[i] = receipts.LineItem{
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
	}

	rec, err := a.records.ApplyExtraction(ctx, id, receipts.ExtractedData{
		FileDisplayName:   fields.FileDisplayName,
		MerchantName:      fields.MerchantName,
		MerchantAddress:   fields.MerchantAddress,
		MerchantContact:   fields.MerchantContact,
		TransactionDate:   fields.TransactionDate,
		TransactionAmount: amount,
		Currency:          fields.Currency,
		ReceiptNumber:     fields.ReceiptNumber,
		InvoiceNumber:     fields.InvoiceNumber,
		ReceiptSummary:    fields.ReceiptSummary,
		Items:             items,
	})
	if err != nil {
		return "", err
	}

	return rec.UserID, nil
}

// parseAmount accepts plain decimal amounts with optional currency noise
// around the number ("12.50", "$12.50", "12,50 EUR").
func parseAmount(v string) (float64, error) {
	cleaned := strings.TrimFunc(v, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.' && r != ','
	})
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse transaction amount %q: %w", v, err)
	}
	return amount, nil
}

// usageAdapter reports a completed scan for the owning user. The company
// dimension mirrors the user until organizations exist.
type usageAdapter struct {
	usage usage.System
}

func (a *usageAdapter) Track(ctx context.Context, userID string) error {
	return a.usage.Track(ctx, usage.Event{
		Event:     usage.EventScan,
		CompanyID: userID,
		UserID:    userID,
	})
}
