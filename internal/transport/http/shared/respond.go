// Package shared holds the JSON responder used by all feature handlers so the
// error-code-to-status mapping lives in exactly one place.
package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "quarters/pkg/domain-errors"
)

type errorBody struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeNotFound:           http.StatusNotFound,
	dErrors.CodeAlreadyExists:      http.StatusConflict,
	dErrors.CodeChecklistFinalized: http.StatusConflict,
	dErrors.CodeAlreadyFinalized:   http.StatusConflict,
	dErrors.CodeNotFinalized:       http.StatusConflict,
	dErrors.CodeIncompleteItems:    http.StatusUnprocessableEntity,
	dErrors.CodeNotAllowed:         http.StatusForbidden,
	dErrors.CodeInsuranceNotValid:  http.StatusUnprocessableEntity,
	dErrors.CodeInvalidInput:       http.StatusBadRequest,
	dErrors.CodeUnauthorized:       http.StatusUnauthorized,
	dErrors.CodeInternal:           http.StatusInternalServerError,
}

// WriteError renders a typed domain error as JSON. Unknown errors are hidden
// behind a generic internal response so store internals never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := errorBody{Error: string(code), Message: "internal error"}
	var de *dErrors.Error
	if errors.As(err, &de) {
		body.Message = de.Message
		body.Details = de.Details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON renders a success payload.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Decode parses a JSON request body into T. An empty body yields the zero
// value; field-level validation stays with the caller. On malformed JSON it
// writes an INVALID_INPUT response and returns false.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return req, false
	}
	return req, true
}
