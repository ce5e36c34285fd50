// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Request errors
	ErrInvalidRequest = &Error{Code: "INVALID_REQUEST", Message: "invalid request"}
	ErrSymbolNotFound = &Error{Code: "SYMBOL_NOT_FOUND", Message: "symbol not found"}

	// Vendor errors
	ErrVendorDisconnected = &Error{Code: "VENDOR_DISCONNECTED", Message: "vendor session not connected"}
	ErrVendorTimeout      = &Error{Code: "VENDOR_TIMEOUT", Message: "vendor request timeout"}
	ErrVendorStatus       = &Error{Code: "VENDOR_STATUS", Message: "unexpected vendor status"}
	ErrVendorPayload      = &Error{Code: "VENDOR_PAYLOAD", Message: "malformed vendor payload"}
	ErrVendorFailed       = &Error{Code: "VENDOR_FAILED", Message: "vendor request failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)

// Reason returns the code of the first *Error in err's chain, or "unknown".
func Reason(err error) string {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return "unknown"
		}
		err = u.Unwrap()
	}
	return "unknown"
}
