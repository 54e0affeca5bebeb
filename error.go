package mediacat

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
	EINTERNAL = "internal"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return EINVALID
	}
	var extractErr *ExtractionError
	if errors.As(err, &extractErr) {
		return EINVALID
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}

	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Error()
	}
	var extractErr *ExtractionError
	if errors.As(err, &extractErr) {
		return extractErr.Error()
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Error()
	}
	return "Internal error"
}

// SchemaError reports a misconfigured LayoutSchema.
// It is fatal: a crawl never starts with an invalid schema.
type SchemaError struct {
	Schema string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "locator required"
	}
	if e.Schema == "" {
		return fmt.Sprintf("layout schema: %s: %s", e.Field, reason)
	}
	return fmt.Sprintf("layout schema %q: %s: %s", e.Schema, e.Field, reason)
}

// ExtractionError reports a listing entry that could not be extracted
// under the given schema because a required field resolved to nothing.
// Only that entry is skipped.
type ExtractionError struct {
	Field string
	URL   string // listing page the entry was found on, if known
}

func (e *ExtractionError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("extract entry: missing %s", e.Field)
	}
	return fmt.Sprintf("extract entry on %s: missing %s", e.URL, e.Field)
}

// FetchError reports a listing page that could not be fetched or parsed.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}
