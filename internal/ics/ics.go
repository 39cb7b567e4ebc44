// Package ics converts dashboard events to and from iCalendar (RFC 5545) payloads.
package ics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/knowledge-dashboard/internal/application"
	"github.com/example/knowledge-dashboard/internal/calendar"
)

// ProductID identifies the dashboard in exported calendars.
const ProductID = "-//knowledge-dashboard//calendar//ES"

// ErrEmptyCalendar is returned when an import payload is empty.
var ErrEmptyCalendar = errors.New("ics: empty calendar payload")

// Encode writes events as a single VCALENDAR. stamp is used for DTSTAMP.
func Encode(w io.Writer, events []application.Event, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, e := range events {
		ve := cal.AddEvent(e.ID)
		ve.SetDtStampTime(stamp.UTC())
		if !e.CreatedAt.IsZero() {
			ve.SetCreatedTime(e.CreatedAt.UTC())
		}
		if !e.UpdatedAt.IsZero() {
			ve.SetModifiedAt(e.UpdatedAt.UTC())
		}
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.AllDay {
			ve.SetAllDayStartAt(e.Start)
			ve.SetAllDayEndAt(e.Start.AddDate(0, 0, 1))
		} else {
			ve.SetStartAt(e.Start.UTC())
			if e.End != nil {
				ve.SetEndAt(e.End.UTC())
			}
		}
		if e.Category != "" {
			ve.SetProperty(ical.ComponentPropertyCategories, string(e.Category))
		}
		if rule := strings.TrimSpace(e.Recurrence); rule != "" {
			ve.AddRrule(strings.TrimPrefix(rule, "RRULE:"))
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

// Imported is one VEVENT converted to service input. UID is the source identifier.
type Imported struct {
	UID   string
	Input application.EventInput
}

// Decoder turns iCalendar payloads into event inputs.
type Decoder struct {
	loc    *time.Location
	logger *slog.Logger
}

// NewDecoder constructs a Decoder. Floating and all-day values are placed in loc.
func NewDecoder(loc *time.Location, logger *slog.Logger) *Decoder {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{loc: loc, logger: logger}
}

// Decode parses body and converts every VEVENT. Components that cannot be
// converted are logged and skipped; the count of skipped events is returned.
func (d *Decoder) Decode(body []byte) ([]Imported, int, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, 0, ErrEmptyCalendar
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("parse calendar: %w", err)
	}

	var (
		out     []Imported
		skipped int
	)
	for _, ve := range cal.Events() {
		imp, err := d.convert(ve)
		if err != nil {
			skipped++
			d.logger.Warn("skipping ics event", "uid", ve.Id(), "error", err)
			continue
		}
		out = append(out, imp)
	}
	d.logger.Info("ics decode completed", "event_count", len(out), "skipped", skipped)
	return out, skipped, nil
}

func (d *Decoder) convert(ve *ical.VEvent) (Imported, error) {
	imp := Imported{UID: ve.Id()}
	in := &imp.Input

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		in.Title = strings.TrimSpace(p.Value)
	}
	if in.Title == "" {
		return imp, errors.New("missing SUMMARY")
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		in.Description = strings.TrimSpace(p.Value)
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return imp, errors.New("missing DTSTART")
	}

	if isDateValue(dtStart) {
		day, err := time.ParseInLocation("20060102", strings.TrimSpace(dtStart.Value), d.loc)
		if err != nil {
			return imp, fmt.Errorf("parse DTSTART: %w", err)
		}
		in.Start = day
		in.AllDay = true
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return imp, fmt.Errorf("parse DTSTART: %w", err)
		}
		in.Start = d.place(dtStart, start)
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := ve.GetEndAt(); err == nil {
				end = d.place(dtEnd, end)
				in.End = &end
			}
		}
	}

	in.Category = calendar.CategoryWork
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		for _, part := range strings.Split(p.Value, ",") {
			if c, err := calendar.ParseCategory(part); err == nil {
				in.Category = c
				break
			}
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		in.Recurrence = strings.TrimSpace(p.Value)
	}
	return imp, nil
}

// place keeps zoned instants as they are and re-reads floating wall clock
// values in the decoder location.
func (d *Decoder) place(prop *ical.IANAProperty, t time.Time) time.Time {
	value := strings.TrimSpace(prop.Value)
	if strings.HasSuffix(value, "Z") {
		return t.In(d.loc)
	}
	if _, ok := prop.ICalParameters[string(ical.ParameterTzid)]; ok {
		return t.In(d.loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, d.loc)
}

func isDateValue(prop *ical.IANAProperty) bool {
	if vs, ok := prop.ICalParameters[string(ical.ParameterValue)]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(prop.Value, "T")
}
