package fieldtype

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"causeboard/pkg/types"
)

// ValidateFunc parses a raw stored value per a field's declared type and
// returns the typed representation. Raw values are always text.
type ValidateFunc func(field types.CategoryField, raw string) (any, error)

// Registry is the closed table of supported field types. It is built once
// at process start and passed by reference; it has no mutable state.
type Registry struct {
	validators map[types.FieldType]ValidateFunc
}

func NewRegistry() *Registry {
	return &Registry{
		validators: map[types.FieldType]ValidateFunc{
			types.FieldTypeText:     validateText,
			types.FieldTypeTextarea: validateText,
			types.FieldTypeNumber:   validateNumber,
			types.FieldTypeDate:     validateDate,
			types.FieldTypeSelect:   validateOption,
			types.FieldTypeRadio:    validateOption,
			types.FieldTypeCheckbox: validateCheckbox,
			types.FieldTypeFile:     validateFile,
		},
	}
}

// Known reports whether t is a supported field type. Schema definitions
// are checked against this so an unknown tag never reaches Validate.
func (r *Registry) Known(t types.FieldType) bool {
	_, ok := r.validators[t]
	return ok
}

// RequiresOptions reports whether fields of type t must declare an
// options list.
func (r *Registry) RequiresOptions(t types.FieldType) bool {
	return t == types.FieldTypeSelect || t == types.FieldTypeRadio
}

// Validate interprets raw per the field's declared type. An empty raw
// value for a non-required field passes and yields nil.
func (r *Registry) Validate(field types.CategoryField, raw string) (any, error) {
	validate, ok := r.validators[field.Type]
	if !ok {
		// should be unreachable: AddField rejects unknown types
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownFieldType, field.Type)
	}

	if strings.TrimSpace(raw) == "" {
		if field.Required {
			return nil, fmt.Errorf("value is required")
		}
		return nil, nil
	}

	return validate(field, raw)
}

func validateText(_ types.CategoryField, raw string) (any, error) {
	return raw, nil
}

func validateNumber(_ types.CategoryField, raw string) (any, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not numeric", raw)
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("%q is not a finite number", raw)
	}

	return n, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func validateDate(_ types.CategoryField, raw string) (any, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return nil, fmt.Errorf("%q is not an ISO-8601 date", raw)
}

func validateOption(field types.CategoryField, raw string) (any, error) {
	for _, option := range field.Options {
		if option == raw {
			return raw, nil
		}
	}

	return nil, fmt.Errorf("%q is not one of the allowed options", raw)
}

func validateCheckbox(_ types.CategoryField, raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}

	return nil, fmt.Errorf("%q is not a boolean value", raw)
}

func validateFile(_ types.CategoryField, raw string) (any, error) {
	// opaque media reference produced by the storage collaborator
	return raw, nil
}
