package workflow

import "fmt"

// Code classifies a workflow transition failure
type Code string

const (
	CodeForbidden     Code = "FORBIDDEN"
	CodeInvalidStatus Code = "INVALID_STATUS"
	CodeMissingReason Code = "MISSING_REASON"
)

// Error is the result type of a failed transition. Callers translate
// codes into transport responses (403, 409, 400).
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func forbidden(format string, args ...interface{}) *Error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

func invalidStatus(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInvalidStatus, Message: fmt.Sprintf(format, args...)}
}

func missingReason(format string, args ...interface{}) *Error {
	return &Error{Code: CodeMissingReason, Message: fmt.Sprintf(format, args...)}
}
