package calendar

import "time"

// TimeStatus is the position of an event relative to the current calendar day.
type TimeStatus string

const (
	StatusPast   TimeStatus = "past"
	StatusToday  TimeStatus = "today"
	StatusFuture TimeStatus = "future"
)

// UrgentWindow is how close an upcoming event must be to be flagged urgent.
const UrgentWindow = 2 * time.Hour

// Statuses lists every status in chronological order.
func Statuses() []TimeStatus {
	return []TimeStatus{StatusPast, StatusToday, StatusFuture}
}

// Label returns the display label for the status.
func (s TimeStatus) Label() string {
	switch s {
	case StatusPast:
		return "Pasado"
	case StatusToday:
		return "Hoy"
	case StatusFuture:
		return "Próximo"
	}
	return ""
}

// Color returns the display color (hex) for the status.
func (s TimeStatus) Color() string {
	switch s {
	case StatusPast:
		return "#9ca3af"
	case StatusToday:
		return "#f59e0b"
	case StatusFuture:
		return "#10b981"
	}
	return ""
}

// StartOfDay returns local midnight of t in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Classify places start relative to the calendar day containing now, in now's
// location. Midnight belongs to the day it opens.
func Classify(now, start time.Time) TimeStatus {
	dayStart := StartOfDay(now)
	nextDay := dayStart.AddDate(0, 0, 1)
	switch {
	case start.Before(dayStart):
		return StatusPast
	case start.Before(nextDay):
		return StatusToday
	default:
		return StatusFuture
	}
}

// IsUrgent reports whether start is at or after now and less than two hours away.
func IsUrgent(now, start time.Time) bool {
	if start.Before(now) {
		return false
	}
	return start.Sub(now) < UrgentWindow
}

// DaysUntil counts calendar days from now's date to start's date, both read in
// now's location. Past dates give negative values.
func DaysUntil(now, start time.Time) int {
	loc := now.Location()
	fy, fm, fd := now.Date()
	ty, tm, td := start.In(loc).Date()
	from := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	to := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// Entry is an event annotated with its classification at a given instant.
type Entry struct {
	Event     Event
	Status    TimeStatus
	Urgent    bool
	DaysUntil int
}

// Annotate classifies e relative to now.
func Annotate(now time.Time, e Event) Entry {
	return Entry{
		Event:     e,
		Status:    Classify(now, e.Start),
		Urgent:    IsUrgent(now, e.Start),
		DaysUntil: DaysUntil(now, e.Start),
	}
}
