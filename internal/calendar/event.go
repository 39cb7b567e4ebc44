package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event is the read-only calendar entry consumed by classification and bucketing.
type Event struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         *time.Time
	Category    Category
	AllDay      bool
	Recurrence  string

	// OccurrenceOf holds the stored event ID when the value was produced by
	// recurrence expansion.
	OccurrenceOf string
}

// ErrInvalidTimestamp is returned when an ISO-8601 value cannot be parsed.
var ErrInvalidTimestamp = errors.New("calendar: invalid timestamp")

var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 string. Values carrying an offset keep
// their instant and are moved into loc; zone-less values are read in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}
	if t, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}

// FormatTimestamp renders t as a zone-less ISO-8601 string in loc.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02T15:04:05")
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func cloneEvent(e Event) Event {
	out := e
	if e.End != nil {
		end := *e.End
		out.End = &end
	}
	return out
}
