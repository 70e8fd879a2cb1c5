package v1

import (
	"encoding/json"
	"net/http"

	"github.com/KirkDiggler/rpg-tracker/internal/errors"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeNoContent writes a 204 No Content response
func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// writeError renders err with the status its code maps to
func writeError(w http.ResponseWriter, err error) {
	var apiErr *errors.Error
	if !errors.As(err, &apiErr) {
		// unclassified errors may carry driver details
		apiErr = errors.Internal("internal error")
	}

	writeJSON(w, apiErr.Code.HTTPStatus(), ErrorResponse{
		Code:    apiErr.Code.String(),
		Message: apiErr.Message,
		Meta:    apiErr.Meta,
	})
}
