package receipts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/Ashwini-Khunte/receipt-tracker/pkg/handlers"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/pagination"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/routes"
)

// batchConcurrency bounds parallel uploads within a single batch request.
const batchConcurrency = 4

// Handler provides HTTP endpoints for receipt operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
	dispatcher    Dispatcher
	documentURL   func(uuid.UUID) string
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, pagination
// config, upload size limit, extraction dispatcher, and document URL builder.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
	dispatcher Dispatcher,
	documentURL func(uuid.UUID) string,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "receipts"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
		dispatcher:    dispatcher,
		documentURL:   documentURL,
	}
}

// Routes returns the route group definition for receipt endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/receipts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/download", Handler: h.Download},
			{Method: "GET", Pattern: "/{id}/download-url", Handler: h.DownloadURL},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "POST", Pattern: "/batch", Handler: h.Batch},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of receipts with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single receipt by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching receipts.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Upload processes a multipart form upload containing a file and the owning
// user. Extracts PDF page count automatically using pdfcpu, then dispatches
// the extraction pipeline for the stored receipt. Responds with the action
// envelope consumed by the upload UI.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondActionError(w, h.logger, ErrFileTooLarge)
		return
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		handlers.RespondActionError(w, h.logger, ErrMissingUser)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondActionError(w, h.logger, ErrInvalidFile)
		return
	}
	defer file.Close()

	rec, err := h.createFromFile(r, file, header, userID)
	if err != nil {
		handlers.RespondActionError(w, h.logger, err)
		return
	}

	h.dispatch(rec)
	handlers.RespondAction(w, http.StatusCreated, rec)
}

// Batch processes a multipart form upload containing multiple files under the
// "files" key. Files are stored concurrently; each file reports its own
// outcome, and extraction is dispatched for every successful store.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingUser)
		return
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	files := r.MultipartForm.File["files"]
	results := make([]BatchResult, len(files))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(batchConcurrency)

	for i, header := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rec, err := h.storeBatchFile(r, header, userID)

			mu.Lock()
			defer mu.Unlock()
			results[i] = BatchResult{Filename: header.Filename}
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Receipt = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	for _, result := range results {
		if result.Receipt != nil {
			h.dispatch(result.Receipt)
		}
	}

	handlers.RespondJSON(w, http.StatusOK, results)
}

// Download streams the stored receipt file with its original content type.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	result, rec, err := h.sys.Download(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	contentType := result.ContentType
	if contentType == "" {
		contentType = rec.ContentType
	}

	w.Header().Set("Content-Type", contentType)
	if result.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", rec.Filename))

	if _, err := io.Copy(w, result.Body); err != nil {
		h.logger.Warn("receipt stream interrupted", "id", id, "error", err)
	}
}

// DownloadURL returns the public download URL for a receipt in the action envelope.
func (h *Handler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondActionError(w, h.logger, ErrInvalidFile)
		return
	}

	if _, err := h.sys.Find(r.Context(), id); err != nil {
		handlers.RespondActionError(w, h.logger, err)
		return
	}

	handlers.RespondAction(w, http.StatusOK, map[string]string{
		"downloadUrl": h.documentURL(id),
	})
}

// Delete removes a receipt by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createFromFile(
	r *http.Request,
	file multipart.File,
	header *multipart.FileHeader,
	userID string,
) (*Receipt, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, ErrInvalidFile
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), data)
	if !isPDF(contentType, header.Filename) {
		return nil, ErrNotPDF
	}

	pageCount := extractPDFPageCount(h.logger, data, contentType)

	cmd := CreateCommand{
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
		UserID:      userID,
		PageCount:   pageCount,
	}

	return h.sys.Create(r.Context(), cmd)
}

func (h *Handler) storeBatchFile(
	r *http.Request,
	header *multipart.FileHeader,
	userID string,
) (*Receipt, error) {
	file, err := header.Open()
	if err != nil {
		return nil, ErrInvalidFile
	}
	defer file.Close()

	return h.createFromFile(r, file, header, userID)
}

func (h *Handler) dispatch(rec *Receipt) {
	if h.dispatcher == nil {
		return
	}
	h.dispatcher.Dispatch(h.documentURL(rec.ID), rec.ID)
}

// isPDF accepts a file when either the detected content type or the filename
// extension identifies it as a PDF. The extension fallback covers clients
// that upload PDFs under a generic content type.
func isPDF(contentType, filename string) bool {
	return strings.Contains(contentType, "pdf") ||
		strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
