package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/c360studio/dealdesk/proposal"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// validationErrorPayload carries one entry per violated field.
type validationErrorPayload struct {
	Error  string                `json:"error"`
	Fields []proposal.FieldError `json:"fields"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// WriteValidationError writes a 422 listing every violated field.
func WriteValidationError(w http.ResponseWriter, verr *proposal.ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(validationErrorPayload{
		Error:  "validation_error",
		Fields: verr.Fields,
	})
}
