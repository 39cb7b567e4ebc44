package ics

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/example/knowledge-dashboard/internal/application"
	"github.com/example/knowledge-dashboard/internal/calendar"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func crlf(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

func TestEncode(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	events := []application.Event{
		{ID: "evt-1", Title: "Standup", Start: start, End: &end, Category: calendar.CategoryWork, Recurrence: "FREQ=WEEKLY;BYDAY=MO"},
		{ID: "evt-2", Title: "Trip", Start: time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC), Category: calendar.CategoryPersonal, AllDay: true},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, events, start); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"PRODID:" + ProductID,
		"UID:evt-1",
		"SUMMARY:Standup",
		"DTSTART:20250310T143000Z",
		"DTEND:20250310T153000Z",
		"RRULE:FREQ=WEEKLY;BYDAY=MO",
		"CATEGORIES:TRABAJO",
		"UID:evt-2",
		"20250312",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("COT", -5*60*60)

	t.Run("converts timed, floating and all-day events", func(t *testing.T) {
		t.Parallel()

		body := crlf(
			"BEGIN:VCALENDAR",
			"VERSION:2.0",
			"PRODID:-//test//EN",
			"BEGIN:VEVENT",
			"UID:a",
			"SUMMARY:Dentist",
			"CATEGORIES:SALUD",
			"DTSTART:20250310T143000Z",
			"DTEND:20250310T150000Z",
			"END:VEVENT",
			"BEGIN:VEVENT",
			"UID:b",
			"SUMMARY:Reading",
			"DTSTART:20250311T090000",
			"RRULE:FREQ=DAILY;COUNT=3",
			"END:VEVENT",
			"BEGIN:VEVENT",
			"UID:c",
			"SUMMARY:Holiday",
			"DTSTART;VALUE=DATE:20250312",
			"END:VEVENT",
			"END:VCALENDAR",
		)

		imported, skipped, err := NewDecoder(loc, quietLogger()).Decode(body)
		if err != nil {
			t.Fatalf("Decode returned error: %v", err)
		}
		if skipped != 0 || len(imported) != 3 {
			t.Fatalf("expected 3 events and no skips, got %d/%d", len(imported), skipped)
		}

		dentist := imported[0]
		if dentist.UID != "a" || dentist.Input.Category != calendar.CategoryHealth {
			t.Fatalf("unexpected first event: %+v", dentist)
		}
		if !dentist.Input.Start.Equal(time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)) {
			t.Fatalf("unexpected start %s", dentist.Input.Start)
		}
		if dentist.Input.End == nil || dentist.Input.End.Sub(dentist.Input.Start) != 30*time.Minute {
			t.Fatalf("unexpected end %v", dentist.Input.End)
		}

		reading := imported[1]
		if reading.Input.Start.Location() != loc || reading.Input.Start.Hour() != 9 {
			t.Fatalf("floating time must be read in display location, got %s", reading.Input.Start)
		}
		if reading.Input.Recurrence != "FREQ=DAILY;COUNT=3" {
			t.Fatalf("unexpected recurrence %q", reading.Input.Recurrence)
		}
		if reading.Input.Category != calendar.CategoryWork {
			t.Fatalf("expected default category, got %q", reading.Input.Category)
		}

		holiday := imported[2]
		if !holiday.Input.AllDay || holiday.Input.Start.Day() != 12 || holiday.Input.Start.Hour() != 0 {
			t.Fatalf("unexpected all-day event: %+v", holiday.Input)
		}
	})

	t.Run("skips events without summary", func(t *testing.T) {
		t.Parallel()

		body := crlf(
			"BEGIN:VCALENDAR",
			"VERSION:2.0",
			"PRODID:-//test//EN",
			"BEGIN:VEVENT",
			"UID:x",
			"DTSTART:20250310T143000Z",
			"END:VEVENT",
			"END:VCALENDAR",
		)
		imported, skipped, err := NewDecoder(loc, quietLogger()).Decode(body)
		if err != nil {
			t.Fatalf("Decode returned error: %v", err)
		}
		if len(imported) != 0 || skipped != 1 {
			t.Fatalf("expected one skipped event, got %d/%d", len(imported), skipped)
		}
	})

	t.Run("rejects empty payloads", func(t *testing.T) {
		t.Parallel()

		if _, _, err := NewDecoder(loc, quietLogger()).Decode([]byte("  \n")); !errors.Is(err, ErrEmptyCalendar) {
			t.Fatalf("expected ErrEmptyCalendar, got %v", err)
		}
	})

	t.Run("reads back exported events", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
		var buf bytes.Buffer
		err := Encode(&buf, []application.Event{{ID: "r", Title: "Course", Start: start, Category: calendar.CategoryStudy}}, start)
		if err != nil {
			t.Fatalf("Encode returned error: %v", err)
		}
		imported, _, err := NewDecoder(time.UTC, quietLogger()).Decode(buf.Bytes())
		if err != nil {
			t.Fatalf("Decode returned error: %v", err)
		}
		if len(imported) != 1 || imported[0].Input.Title != "Course" || imported[0].Input.Category != calendar.CategoryStudy {
			t.Fatalf("unexpected import: %+v", imported)
		}
		if !imported[0].Input.Start.Equal(start) {
			t.Fatalf("unexpected start %s", imported[0].Input.Start)
		}
	})
}
