package application

import (
	"testing"
	"time"

	"github.com/example/knowledge-dashboard/internal/calendar"
)

func TestValidationError(t *testing.T) {
	t.Parallel()

	var nilErr *ValidationError
	if nilErr.Error() != "" || nilErr.HasErrors() || nilErr.Fields() != nil {
		t.Fatalf("nil ValidationError must be empty")
	}
	if got := (&ValidationError{}).Error(); got != "validation failed" {
		t.Fatalf("unexpected message for empty error: %q", got)
	}

	vErr := &ValidationError{}
	vErr.add("title", "title is required")
	vErr.add("end_date", "end_date must be after start_date")
	vErr.add("title", "ignored")
	if got := vErr.FieldErrors["title"]; got != "title is required" {
		t.Fatalf("expected first message to win, got %q", got)
	}
	if got := vErr.Error(); got != "validation failed: end_date, title" {
		t.Fatalf("unexpected message: %q", got)
	}
	if !vErr.HasErrors() {
		t.Fatalf("expected HasErrors to report true")
	}
}

func TestValidationErrorFromForm(t *testing.T) {
	t.Parallel()

	if ValidationErrorFromForm(nil) != nil {
		t.Fatalf("expected nil for nil form error")
	}
	_, err := calendar.Form{Title: " ", StartDate: "mañana"}.Draft(time.UTC)
	fErr, ok := err.(*calendar.FormError)
	if !ok {
		t.Fatalf("expected FormError, got %v", err)
	}
	vErr := ValidationErrorFromForm(fErr)
	if _, ok := vErr.FieldErrors["title"]; !ok {
		t.Fatalf("expected title error, got %v", vErr.FieldErrors)
	}
	if _, ok := vErr.FieldErrors["start_date"]; !ok {
		t.Fatalf("expected start_date error, got %v", vErr.FieldErrors)
	}
}
