package calendar

import (
	"sort"
	"time"
)

// DefaultPageSize is the number of upcoming entries per page.
const DefaultPageSize = 6

// VisibleEvents returns the events passing the category filter.
func VisibleEvents(events []Event, filter Category) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if filter.Matches(e.Category) {
			out = append(out, e)
		}
	}
	return out
}

// Upcoming returns the visible events starting at or after now, earliest first.
func Upcoming(events []Event, now time.Time, filter Category) []Event {
	visible := VisibleEvents(events, filter)
	out := visible[:0]
	for _, e := range visible {
		if !e.Start.Before(now) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// Stats counts events per status. Total is the unfiltered count.
type Stats struct {
	Past   int
	Today  int
	Future int
	Total  int
}

// CountByStatus classifies the visible events relative to now.
func CountByStatus(now time.Time, events []Event, filter Category) Stats {
	stats := Stats{Total: len(events)}
	for _, e := range events {
		if !filter.Matches(e.Category) {
			continue
		}
		switch Classify(now, e.Start) {
		case StatusPast:
			stats.Past++
		case StatusToday:
			stats.Today++
		case StatusFuture:
			stats.Future++
		}
	}
	return stats
}

// CountSeriesByStatus classifies stored events like CountByStatus, except that a
// recurring event takes the status of its occurrences: today when one starts on
// now's date, future when a later one exists, past otherwise. occurrences holds
// the expansion of stored from StartOfDay(now) onwards; each occurrence refers
// to its stored event through OccurrenceOf.
func CountSeriesByStatus(now time.Time, stored, occurrences []Event, filter Category) Stats {
	current := make(map[string]TimeStatus, len(occurrences))
	for _, o := range occurrences {
		if o.OccurrenceOf == "" {
			continue
		}
		status := Classify(now, o.Start)
		switch status {
		case StatusToday:
			current[o.OccurrenceOf] = status
		case StatusFuture:
			if _, ok := current[o.OccurrenceOf]; !ok {
				current[o.OccurrenceOf] = status
			}
		}
	}

	stats := Stats{Total: len(stored)}
	for _, e := range stored {
		if !filter.Matches(e.Category) {
			continue
		}
		status, ok := current[e.ID]
		if !ok {
			status = Classify(now, e.Start)
		}
		switch status {
		case StatusPast:
			stats.Past++
		case StatusToday:
			stats.Today++
		case StatusFuture:
			stats.Future++
		}
	}
	return stats
}

// Page is one slice of a paginated sequence. Number is 1-based.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalPages int
	TotalItems int
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages
}

// HasPrevious reports whether an earlier page exists.
func (p Page[T]) HasPrevious() bool {
	return p.Number > 1
}

// Paginate returns page number of items. Out of range pages are clamped and an
// empty sequence still yields a single empty page.
func Paginate[T any](items []T, number, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages := (len(items) + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	start := (number - 1) * size
	end := start + size
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	page := make([]T, end-start)
	copy(page, items[start:end])
	return Page[T]{
		Items:      page,
		Number:     number,
		Size:       size,
		TotalPages: totalPages,
		TotalItems: len(items),
	}
}

// Pager tracks the current page of the upcoming list and returns to page one
// whenever the filtered length or the category changes.
type Pager struct {
	size       int
	page       int
	lastLen    int
	lastFilter Category
	observed   bool
}

// NewPager constructs a pager; a non-positive size selects DefaultPageSize.
func NewPager(size int) *Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Pager{size: size, page: 1}
}

// Size returns the page size.
func (p *Pager) Size() int {
	return p.size
}

// Current returns the 1-based current page.
func (p *Pager) Current() int {
	return p.page
}

// SetPage moves to page n. Values below one select page one.
func (p *Pager) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	p.page = n
}

// Observe records the current filtered length and category.
func (p *Pager) Observe(filter Category, length int) {
	if p.observed && (filter != p.lastFilter || length != p.lastLen) {
		p.page = 1
	}
	p.lastFilter = filter
	p.lastLen = length
	p.observed = true
}

// Apply observes items under filter and returns the current page of them.
func Apply[T any](p *Pager, items []T, filter Category) Page[T] {
	p.Observe(filter, len(items))
	page := Paginate(items, p.page, p.size)
	p.page = page.Number
	return page
}
