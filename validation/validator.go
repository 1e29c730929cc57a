package validation

import (
	"strings"
)

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string
	Message string
}

// Errors is the error returned by failed validation.
type Errors struct {
	Fields []FieldError
}

// Error joins every field error as "field: message".
func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

// Has reports whether field has an error.
func (e *Errors) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Validator collects field errors programmatically.
type Validator struct {
	errs []FieldError
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records an error for field.
func (v *Validator) AddError(field, message string) *Validator {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// Merge appends the field errors of err when it is an *Errors.
// Any other non-nil error is recorded without a field.
func (v *Validator) Merge(err error) *Validator {
	if err == nil {
		return v
	}
	if ve, ok := err.(*Errors); ok {
		v.errs = append(v.errs, ve.Fields...)
		return v
	}
	return v.AddError("", err.Error())
}

// HasErrors reports whether any error was recorded.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Err returns the collected errors, or nil when there are none.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return &Errors{Fields: append([]FieldError(nil), v.errs...)}
}
