package application

import (
	"errors"
	"slices"
	"strings"

	"github.com/example/knowledge-dashboard/internal/calendar"
)

var (
	// ErrUnauthorized is returned when a read-only principal attempts a write.
	ErrUnauthorized = errors.New("application: unauthorized")
	ErrNotFound     = errors.New("application: not found")
	// ErrAlreadyExists is returned when storage already holds the generated id.
	ErrAlreadyExists      = errors.New("application: already exists")
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAdminDisabled is returned when no admin password hash is configured.
	ErrAdminDisabled = errors.New("application: admin access disabled")
)

// ValidationError maps input fields (json names, "attributes.<key>" for
// resource attributes) to the first problem found in each.
type ValidationError struct {
	FieldErrors map[string]string
}

func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(v.Fields(), ", ")
}

// HasErrors reports whether any field was rejected.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Fields returns the rejected field names in order.
func (v *ValidationError) Fields() []string {
	if v == nil {
		return nil
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	return fields
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; !exists {
		v.FieldErrors[field] = message
	}
}

// ValidationErrorFromForm converts calendar form problems so callers can
// report both sources the same way.
func ValidationErrorFromForm(err *calendar.FormError) *ValidationError {
	if err == nil {
		return nil
	}
	out := &ValidationError{}
	for field, message := range err.Fields {
		out.add(field, message)
	}
	return out
}
