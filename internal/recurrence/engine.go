package recurrence

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/example/knowledge-dashboard/internal/calendar"
)

// DefaultMaxOccurrences caps the occurrences produced per event and window.
const DefaultMaxOccurrences = 500

var (
	// ErrInvalidRule indicates the RRULE could not be parsed.
	ErrInvalidRule = errors.New("recurrence: invalid rule")
	// ErrInvalidWindow indicates the expansion window is empty or inverted.
	ErrInvalidWindow = errors.New("recurrence: window end must be after start")
)

// Engine expands RRULE-bearing events into concrete occurrences.
type Engine struct {
	maxOccurrences int
	logger         *slog.Logger
}

// NewEngine constructs an Engine. A non-positive max selects DefaultMaxOccurrences.
func NewEngine(maxOccurrences int, logger *slog.Logger) *Engine {
	if maxOccurrences <= 0 {
		maxOccurrences = DefaultMaxOccurrences
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{maxOccurrences: maxOccurrences, logger: logger}
}

// Validate checks that rule parses as an RFC 5545 RRULE. Empty rules are valid.
func Validate(rule string) error {
	if strings.TrimSpace(rule) == "" {
		return nil
	}
	if _, err := parse(rule, time.Now()); err != nil {
		return err
	}
	return nil
}

func parse(rule string, dtstart time.Time) (*rrule.RRule, error) {
	raw := strings.TrimSpace(rule)
	if len(raw) >= 6 && strings.EqualFold(raw[:6], "RRULE:") {
		raw = raw[6:]
	}
	r, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	r.DTStart(dtstart)
	return r, nil
}

// GenerateOccurrences returns the occurrences of e starting inside [from, to),
// in e's start location. The boolean reports whether the cap truncated the result.
func (e *Engine) GenerateOccurrences(ev calendar.Event, from, to time.Time) ([]calendar.Event, bool, error) {
	if !to.After(from) {
		return nil, false, ErrInvalidWindow
	}
	if strings.TrimSpace(ev.Recurrence) == "" {
		if !ev.Start.Before(from) && ev.Start.Before(to) {
			return []calendar.Event{ev}, false, nil
		}
		return nil, false, nil
	}

	r, err := parse(ev.Recurrence, ev.Start)
	if err != nil {
		return nil, false, err
	}

	loc := ev.Start.Location()
	starts := r.Between(from.In(loc), to.In(loc), true)

	var duration time.Duration
	if ev.End != nil && ev.End.After(ev.Start) {
		duration = ev.End.Sub(ev.Start)
	}

	out := make([]calendar.Event, 0, len(starts))
	truncated := false
	for _, start := range starts {
		if !start.Before(to) {
			continue
		}
		if len(out) == e.maxOccurrences {
			truncated = true
			break
		}
		occ := ev
		occ.Start = start
		occ.OccurrenceOf = ev.ID
		occ.End = nil
		if duration > 0 {
			end := start.Add(duration)
			occ.End = &end
		}
		out = append(out, occ)
	}
	return out, truncated, nil
}

// Expand replaces every recurring event with its occurrences inside [from, to).
// Events without a rule are kept as they are. Rules that fail to parse keep the
// stored event so it stays visible on its own date.
func (e *Engine) Expand(events []calendar.Event, from, to time.Time) []calendar.Event {
	out := make([]calendar.Event, 0, len(events))
	for _, ev := range events {
		if strings.TrimSpace(ev.Recurrence) == "" {
			out = append(out, ev)
			continue
		}
		occurrences, truncated, err := e.GenerateOccurrences(ev, from, to)
		if err != nil {
			e.logger.Warn("failed to expand recurring event", "event_id", ev.ID, "rrule", ev.Recurrence, "error", err)
			out = append(out, ev)
			continue
		}
		if truncated {
			e.logger.Warn("recurring event truncated", "event_id", ev.ID, "max_occurrences", e.maxOccurrences)
		}
		out = append(out, occurrences...)
	}
	return out
}
