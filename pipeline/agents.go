package pipeline

import (
	"context"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// Agent is a capability bundle the router can select: an identity, role
// instructions, and a bound tool. Agents are stateless; all run-scoped data
// flows through the state bag.
type Agent interface {
	Name() string
	Description() string
	Execute(ctx context.Context, s state.State) (state.State, error)
}

const scanningInstructions = `You are an AI-powered receipt scanning assistant. Your primary role is to accurately extract and structure relevant information from scanned receipts:
- Merchant information: store name, address, contact details.
- Transaction details: date, time, receipt number, invoice number, payment method.
- Itemized purchases: product names, quantities, individual prices, discounts.
- Total amounts: subtotal, taxes, total paid, and any applied discounts.
Detect OCR errors and correct misread text when possible.
Normalize dates, currency values, and formatting for consistency.
If any key details are missing or unclear, return a structured response indicating incomplete data. Never fabricate values.
Return structured JSON with keys: fileDisplayName, merchantName, merchantAddress, merchantContact, transactionDate, transactionAmount, currency, receiptNumber, invoiceNumber, items (array of {name, quantity, unitPrice, totalPrice}).`

const summaryInstructions = `You write a short, information-dense summary of a receipt for display in an expense tracker. Mention the merchant name, transaction date, total amount with currency, and notable line items with some context. Mention both the invoice number and the receipt number if both are present. Respond with the summary text only.`
