// Package domainerrors provides typed, caller-facing errors. Services return
// these so transport layers and UIs can branch on the specific code instead of
// string-matching messages. Every code is an expected, recoverable outcome;
// none of them should crash the process.
package domainerrors

import "errors"

// Code identifies a caller-facing failure class.
type Code string

const (
	// CodeNotFound: referenced tenancy/checklist/inspection/item/photo does not exist.
	CodeNotFound Code = "NOT_FOUND"
	// CodeAlreadyExists: a checklist or inspection already exists for the tenancy and phase.
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	// CodeChecklistFinalized: a mutating operation hit a finalized record.
	CodeChecklistFinalized Code = "CHECKLIST_FINALIZED"
	// CodeAlreadyFinalized: finalize called on an already-finalized record.
	CodeAlreadyFinalized Code = "ALREADY_FINALIZED"
	// CodeNotFinalized: reopen called on a record that is not finalized.
	CodeNotFinalized Code = "NOT_FINALIZED"
	// CodeIncompleteItems: finalize rejected because items are still ungraded.
	CodeIncompleteItems Code = "INCOMPLETE_ITEMS"
	// CodeNotAllowed: the self-completion gate rejected a tenant actor.
	CodeNotAllowed Code = "NOT_ALLOWED"
	// CodeInsuranceNotValid: an item precondition on insurance state failed.
	CodeInsuranceNotValid Code = "INSURANCE_NOT_VALID"
	// CodeInvalidInput: malformed input (bad date, unknown enum value).
	CodeInvalidInput Code = "INVALID_INPUT"
	// CodeUnauthorized: missing or invalid caller identity.
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeInternal: unexpected failure; the only code that maps to a 5xx.
	CodeInternal Code = "INTERNAL"
)

// Error is the concrete typed error. Details carries small structured facts
// (e.g. the ungraded item count) that callers surface alongside the code.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// New constructs a typed error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetail attaches a structured detail and returns the error for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, 1)
	}
	e.Details[key] = value
	return e
}

// Is reports whether err (or anything it wraps) is a domain error with the
// given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, or CodeInternal when err is not a typed
// domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
