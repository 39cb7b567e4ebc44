package calendar

import (
	"sort"
	"time"
)

// Direction moves a reference date backwards or forwards by one unit.
type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

// MonthGrid returns every date shown in the month containing ref, from the
// Sunday on or before the 1st to the Saturday on or after the last day.
func MonthGrid(ref time.Time) []time.Time {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	days := make([]time.Time, 0, 42)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// WeekRange returns the Sunday starting the week that contains ref and the
// Saturday six days later, both at midnight.
func WeekRange(ref time.Time) (time.Time, time.Time) {
	day := StartOfDay(ref)
	start := day.AddDate(0, 0, -int(day.Weekday()))
	return start, start.AddDate(0, 0, 6)
}

// WeekDays returns the seven dates of the week containing ref.
func WeekDays(ref time.Time) []time.Time {
	start, _ := WeekRange(ref)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// DayHourSlots returns the hour rows of a day view.
func DayHourSlots() []int {
	slots := make([]int, 24)
	for i := range slots {
		slots[i] = i
	}
	return slots
}

// SameDate reports whether t falls on date's calendar day, read in date's location.
func SameDate(date, t time.Time) bool {
	y1, m1, d1 := date.Date()
	y2, m2, d2 := t.In(date.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// EventsForDate returns the events starting on date that pass the filter.
// The result is a new slice; events is never modified.
func EventsForDate(date time.Time, events []Event, filter Category) []Event {
	out := make([]Event, 0)
	for _, e := range events {
		if !filter.Matches(e.Category) {
			continue
		}
		if SameDate(date, e.Start) {
			out = append(out, e)
		}
	}
	return out
}

// EventsForHour returns the timed events of a day whose start hour, read in
// loc, equals hour. A nil loc reads each start in its own location.
func EventsForHour(hour int, dayEvents []Event, loc *time.Location) []Event {
	out := make([]Event, 0)
	for _, e := range dayEvents {
		if e.AllDay {
			continue
		}
		start := e.Start
		if loc != nil {
			start = start.In(loc)
		}
		if start.Hour() == hour {
			out = append(out, e)
		}
	}
	return out
}

// AllDayEvents returns the all-day events of a day.
func AllDayEvents(dayEvents []Event) []Event {
	out := make([]Event, 0)
	for _, e := range dayEvents {
		if e.AllDay {
			out = append(out, e)
		}
	}
	return out
}

// SortDayEvents orders all-day events first, then timed events by start.
// Ties keep their input order.
func SortDayEvents(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AllDay != out[j].AllDay {
			return out[i].AllDay
		}
		if out[i].AllDay {
			return false
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// Navigate moves ref by one month, week or day. Month steps keep the day of
// month, clamped to the length of the target month.
func Navigate(ref time.Time, view View, dir Direction) time.Time {
	step := int(dir)
	switch view {
	case ViewMonth:
		first := time.Date(ref.Year(), ref.Month(), 1, ref.Hour(), ref.Minute(), ref.Second(), ref.Nanosecond(), ref.Location())
		target := first.AddDate(0, step, 0)
		day := ref.Day()
		if n := daysIn(target); day > n {
			day = n
		}
		return target.AddDate(0, 0, day-1)
	case ViewWeek:
		return ref.AddDate(0, 0, 7*step)
	case ViewDay:
		return ref.AddDate(0, 0, step)
	}
	return ref
}

func daysIn(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, 1, -1).Day()
}

// DayCell is one date of a month or week render.
type DayCell struct {
	Date    time.Time
	InMonth bool
	IsToday bool
	Events  []Event
}

// MonthView is the rendered month grid.
type MonthView struct {
	Year  int
	Month time.Month
	Cells []DayCell
}

// Weeks returns the number of grid rows.
func (m MonthView) Weeks() int {
	return len(m.Cells) / 7
}

// WeekView is the rendered seven-day strip.
type WeekView struct {
	Start time.Time
	End   time.Time
	Days  []DayCell
}

// HourSlot is one row of the day timeline.
type HourSlot struct {
	Hour   int
	Events []Event
}

// DayView is the rendered day timeline.
type DayView struct {
	Date    time.Time
	IsToday bool
	AllDay  []Event
	Slots   []HourSlot
	Sorted  []Event
}

// BuildMonth buckets events into the month grid containing ref.
func BuildMonth(ref, now time.Time, events []Event, filter Category) MonthView {
	grid := MonthGrid(ref)
	view := MonthView{Year: ref.Year(), Month: ref.Month(), Cells: make([]DayCell, 0, len(grid))}
	for _, d := range grid {
		view.Cells = append(view.Cells, DayCell{
			Date:    d,
			InMonth: d.Month() == ref.Month(),
			IsToday: SameDate(d, now),
			Events:  SortDayEvents(EventsForDate(d, events, filter)),
		})
	}
	return view
}

// BuildWeek buckets events into the week containing ref.
func BuildWeek(ref, now time.Time, events []Event, filter Category) WeekView {
	start, end := WeekRange(ref)
	view := WeekView{Start: start, End: end, Days: make([]DayCell, 0, 7)}
	for _, d := range WeekDays(ref) {
		view.Days = append(view.Days, DayCell{
			Date:    d,
			InMonth: d.Month() == ref.Month(),
			IsToday: SameDate(d, now),
			Events:  SortDayEvents(EventsForDate(d, events, filter)),
		})
	}
	return view
}

// BuildDay buckets the events of ref's date into the all-day group and hour rows.
func BuildDay(ref, now time.Time, events []Event, filter Category) DayView {
	date := StartOfDay(ref)
	dayEvents := EventsForDate(date, events, filter)
	view := DayView{
		Date:    date,
		IsToday: SameDate(date, now),
		AllDay:  AllDayEvents(dayEvents),
		Sorted:  SortDayEvents(dayEvents),
	}
	for _, h := range DayHourSlots() {
		view.Slots = append(view.Slots, HourSlot{Hour: h, Events: EventsForHour(h, dayEvents, date.Location())})
	}
	return view
}

// DisplayRange returns the half-open instant range covered by view at ref.
func DisplayRange(ref time.Time, view View) (time.Time, time.Time) {
	switch view {
	case ViewMonth:
		grid := MonthGrid(ref)
		return grid[0], grid[len(grid)-1].AddDate(0, 0, 1)
	case ViewWeek:
		start, end := WeekRange(ref)
		return start, end.AddDate(0, 0, 1)
	default:
		start := StartOfDay(ref)
		return start, start.AddDate(0, 0, 1)
	}
}
