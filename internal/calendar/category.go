package calendar

import (
	"errors"
	"fmt"
	"strings"
)

// Category is the closed set of event categories.
type Category string

const (
	CategoryWork     Category = "TRABAJO"
	CategoryPersonal Category = "PERSONAL"
	CategoryStudy    Category = "ESTUDIO"
	CategoryHealth   Category = "SALUD"

	// CategoryAll is a filter value only; events never carry it.
	CategoryAll Category = "ALL"
)

// ErrInvalidCategory is returned when a category value is outside the closed set.
var ErrInvalidCategory = errors.New("calendar: invalid category")

// Categories lists every assignable event category in display order.
func Categories() []Category {
	return []Category{CategoryWork, CategoryPersonal, CategoryStudy, CategoryHealth}
}

// ParseCategory resolves an event category, rejecting ALL.
func ParseCategory(value string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(value)))
	if !c.Assignable() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, value)
	}
	return c, nil
}

// ParseFilter resolves a category filter. An empty value means ALL.
func ParseFilter(value string) (Category, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return CategoryAll, nil
	}
	c := Category(strings.ToUpper(trimmed))
	if c == CategoryAll || c.Assignable() {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, value)
}

// Assignable reports whether an event may carry the category.
func (c Category) Assignable() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryStudy, CategoryHealth:
		return true
	case CategoryAll:
		return false
	}
	return false
}

// Matches reports whether an event category passes the receiver used as a filter.
func (c Category) Matches(eventCategory Category) bool {
	return c == CategoryAll || c == eventCategory
}

// Label returns the display label for the category.
func (c Category) Label() string {
	switch c {
	case CategoryWork:
		return "Trabajo"
	case CategoryPersonal:
		return "Personal"
	case CategoryStudy:
		return "Estudio"
	case CategoryHealth:
		return "Salud"
	case CategoryAll:
		return "Todas"
	}
	return ""
}

// Color returns the display color (hex) for the category.
func (c Category) Color() string {
	switch c {
	case CategoryWork:
		return "#3b82f6"
	case CategoryPersonal:
		return "#22c55e"
	case CategoryStudy:
		return "#a855f7"
	case CategoryHealth:
		return "#ef4444"
	case CategoryAll:
		return "#6b7280"
	}
	return ""
}
