package receipts

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Ashwini-Khunte/receipt-tracker/pkg/pagination"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/query"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/repository"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a receipt repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "receipts"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64, dispatcher Dispatcher, documentURL func(uuid.UUID) string) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize, dispatcher, documentURL)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Receipt], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename", "MerchantName", "ReceiptSummary")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count receipts: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanReceipt)
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Receipt, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanReceipt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

const receiptColumns = `id, user_id, filename, file_display_name, content_type,
		size_bytes, page_count, storage_key, status, merchant_name, merchant_address,
		merchant_contact, transaction_date, transaction_amount, currency,
		receipt_number, invoice_number, receipt_summary, items, uploaded_at, updated_at`

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Receipt, error) {
	id := uuid.New()
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload receipt blob: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO receipts(id, user_id, filename, content_type, size_bytes, page_count, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, receiptColumns)

	insertArgs := []any{
		id,
		cmd.UserID,
		cmd.Filename,
		cmd.ContentType,
		int64(len(cmd.Data)),
		cmd.PageCount,
		key,
	}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Receipt, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanReceipt)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("receipt created", "id", rec.ID, "filename", rec.Filename, "user", rec.UserID)
	return &rec, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	rec, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM receipts WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, rec.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", rec.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("receipt deleted", "id", id)
	return nil
}

func (r *repo) Download(ctx context.Context, id uuid.UUID) (*storage.DownloadResult, *Receipt, error) {
	rec, err := r.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	result, err := r.storage.Download(ctx, rec.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("download receipt blob: %w", err)
	}

	return result, rec, nil
}

func (r *repo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Receipt, error) {
	q := fmt.Sprintf(`
		UPDATE receipts SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING %s`, receiptColumns)

	rec, err := repository.QueryOne(ctx, r.db, q, []any{id, status}, scanReceipt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("receipt status updated", "id", id, "status", status)
	return &rec, nil
}

func (r *repo) ApplyExtraction(ctx context.Context, id uuid.UUID, data ExtractedData) (*Receipt, error) {
	items, err := json.Marshal(data.Items)
	if err != nil {
		return nil, fmt.Errorf("encode line items: %w", err)
	}

	q := fmt.Sprintf(`
		UPDATE receipts SET
			file_display_name = $2,
			merchant_name = $3,
			merchant_address = $4,
			merchant_contact = $5,
			transaction_date = $6,
			transaction_amount = $7,
			currency = $8,
			receipt_number = $9,
			invoice_number = $10,
			receipt_summary = $11,
			items = $12,
			status = '%s',
			updated_at = now()
		WHERE id = $1
		RETURNING %s`, StatusProcessed, receiptColumns)

	updateArgs := []any{
		id,
		data.FileDisplayName,
		data.MerchantName,
		data.MerchantAddress,
		data.MerchantContact,
		data.TransactionDate,
		data.TransactionAmount,
		data.Currency,
		data.ReceiptNumber,
		data.InvoiceNumber,
		data.ReceiptSummary,
		items,
	}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Receipt, error) {
		return repository.QueryOne(ctx, tx, q, updateArgs, scanReceipt)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"extraction applied",
		"id", rec.ID,
		"merchant", data.MerchantName,
		"amount", data.TransactionAmount,
	)
	return &rec, nil
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("receipts/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "receipt"
	}
	return url.PathEscape(name)
}
