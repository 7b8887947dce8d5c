package lifecycle

import (
	"errors"
	"strings"

	"github.com/jredh-dev/foodshare/internal/store"
	"github.com/jredh-dev/foodshare/pkg/models"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = store.ErrNotFound
	ErrMalformedStore    = store.ErrMalformed
	ErrInvalidTransition = models.ErrInvalidTransition
)

// FieldError is one problem with one input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every field problem found in an input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// validator accumulates field problems.
type validator struct {
	fields []FieldError
}

func (v *validator) add(field, msg string) {
	v.fields = append(v.fields, FieldError{Field: field, Message: msg})
}

func (v *validator) require(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		v.add(field, "is required")
		return false
	}
	return true
}

func (v *validator) check(ok bool, field, msg string) {
	if !ok {
		v.add(field, msg)
	}
}

// err returns nil if nothing was recorded.
func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}
