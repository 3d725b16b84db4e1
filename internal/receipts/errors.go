package receipts

import (
	"errors"
	"net/http"
)

// Domain errors for receipt operations.
var (
	ErrNotFound     = errors.New("receipt not found")
	ErrDuplicate    = errors.New("receipt already exists")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrInvalidFile  = errors.New("invalid file")
	ErrNotPDF       = errors.New("only PDF files are allowed")
	ErrMissingUser  = errors.New("user_id required")
)

// MapHTTPStatus maps receipt domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidFile) || errors.Is(err, ErrNotPDF) || errors.Is(err, ErrMissingUser) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
