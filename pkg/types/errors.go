package types

import (
	"errors"
	"fmt"
	"strings"
)

// Input errors. Client-caused, never retried automatically.
var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryInactive    = errors.New("category is inactive")
	ErrNotDynamicCategory  = errors.New("category does not accept dynamic fields")
	ErrDuplicateName       = errors.New("name already in use")
	ErrFieldSetMismatch    = errors.New("reorder payload does not match the category's field set")
	ErrCategoryImmutable   = errors.New("a cause's category cannot be changed")
	ErrCauseNotFound       = errors.New("cause not found")
	ErrUnknownFieldType    = errors.New("unknown field type")
	ErrFieldNameTaken      = errors.New("field name already used in this category")
	ErrMissingPayload      = errors.New("category payload is required")
	ErrUnexpectedPayload   = errors.New("payload does not match the category's mechanism")
	ErrCategoryNameChanged = errors.New("category internal name is immutable")
)

// Conflict errors.
var (
	ErrFieldNotFound          = errors.New("field not found")
	ErrConcurrentModification = errors.New("concurrent modification, retry the operation")
)

// Field-addressable validation error codes.
const (
	ValidationCodeMissingRequired = "missing_required"
	ValidationCodeInvalidValue    = "invalid_value"
	ValidationCodeUnknownField    = "unknown_field"
)

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError aggregates every failing field of a write so the caller
// can surface all of them in one round trip.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// ErrOrNil returns the aggregate as an error only when at least one field
// failed, so callers can return it directly.
func (e *ValidationError) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}
