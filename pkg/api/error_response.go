package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gisdiff/changedet/pkg/domain"
)

// ErrorResponse represents a standard JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// WriteJSONError writes a JSON error response with the given status code and message
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	json.NewEncoder(w).Encode(response)
}

// statusForError maps core error categories to HTTP status codes. All
// validation failures are the caller's problem; anything else is ours.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfiguration),
		errors.Is(err, domain.ErrSchemaMismatch),
		errors.Is(err, domain.ErrDuplicateKey),
		errors.Is(err, domain.ErrNullGeometry):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
