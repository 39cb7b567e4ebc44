package testfixtures

import (
	"fmt"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"github.com/example/knowledge-dashboard/internal/application"
	"github.com/example/knowledge-dashboard/internal/calendar"
	"github.com/example/knowledge-dashboard/internal/persistence"
)

var (
	eventCounter    uint64
	resourceCounter uint64
)

// referenceTime is a Sunday morning, mid-month, so month, week and day views
// all have neighbours on both sides.
var referenceTime = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical "now" used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Event fixtures -----------------------------

// EventFixture is a deterministic event that can be materialised for any layer.
type EventFixture struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Start       time.Time
	End         *time.Time
	Category    calendar.Category
	AllDay      bool
	Recurrence  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns an event one day after ReferenceTime with optional overrides.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	start := referenceTime.Add(24*time.Hour + time.Duration(idx)*time.Minute)
	end := start.Add(time.Hour)
	fixture := EventFixture{
		ID:        fmt.Sprintf("event-%03d", idx),
		UserID:    "admin",
		Title:     fmt.Sprintf("Event %03d", idx),
		Start:     start,
		End:       &end,
		Category:  calendar.CategoryWork,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) {
		f.ID = id
	}
}

// WithEventTitle overrides the generated title.
func WithEventTitle(title string) EventOption {
	return func(f *EventFixture) {
		f.Title = title
	}
}

// WithEventStart moves the event, keeping its duration.
func WithEventStart(start time.Time) EventOption {
	return func(f *EventFixture) {
		if f.End != nil {
			end := start.Add(f.End.Sub(f.Start))
			f.End = &end
		}
		f.Start = start
	}
}

// WithEventEnd overrides the end. Nil removes it.
func WithEventEnd(end *time.Time) EventOption {
	return func(f *EventFixture) {
		f.End = end
	}
}

// WithEventCategory overrides the category.
func WithEventCategory(category calendar.Category) EventOption {
	return func(f *EventFixture) {
		f.Category = category
	}
}

// WithEventAllDay marks the event all-day, moving it to midnight and dropping the end.
func WithEventAllDay() EventOption {
	return func(f *EventFixture) {
		f.AllDay = true
		f.Start = calendar.StartOfDay(f.Start)
		f.End = nil
	}
}

// WithEventRecurrence attaches an RRULE.
func WithEventRecurrence(rule string) EventOption {
	return func(f *EventFixture) {
		f.Recurrence = rule
	}
}

// WithEventTimestamps sets both created and updated timestamps.
func WithEventTimestamps(created, updated time.Time) EventOption {
	return func(f *EventFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

func (f EventFixture) end() *time.Time {
	if f.End == nil {
		return nil
	}
	end := *f.End
	return &end
}

// Application returns the fixture as an application.Event.
func (f EventFixture) Application() application.Event {
	return application.Event{
		ID:          f.ID,
		UserID:      f.UserID,
		Title:       f.Title,
		Description: f.Description,
		Start:       f.Start,
		End:         f.end(),
		Category:    f.Category,
		AllDay:      f.AllDay,
		Recurrence:  f.Recurrence,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input returns the fixture as the input that would create it.
func (f EventFixture) Input() application.EventInput {
	return application.EventInput{
		Title:       f.Title,
		Description: f.Description,
		Start:       f.Start,
		End:         f.end(),
		Category:    f.Category,
		AllDay:      f.AllDay,
		Recurrence:  f.Recurrence,
	}
}

// Persistence returns the fixture as a persistence.Event.
func (f EventFixture) Persistence() persistence.Event {
	return persistence.Event{
		ID:          f.ID,
		UserID:      f.UserID,
		Title:       f.Title,
		Description: f.Description,
		Start:       f.Start,
		End:         f.end(),
		Category:    string(f.Category),
		AllDay:      f.AllDay,
		Recurrence:  f.Recurrence,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Calendar returns the fixture as a calendar.Event.
func (f EventFixture) Calendar() calendar.Event {
	return f.Application().Calendar()
}

// ---------------------------- Resource fixtures ----------------------------

// ResourceFixture is a deterministic resource of any kind.
type ResourceFixture struct {
	ID          string
	Kind        application.Kind
	UserID      string
	Title       string
	Description string
	URL         string
	Category    string
	Tags        []string
	Attributes  map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ResourceOption configures the generated resource fixture.
type ResourceOption func(*ResourceFixture)

// NewResourceFixture returns a course with optional overrides. Kind specific
// required attributes are filled in by WithResourceKind.
func NewResourceFixture(opts ...ResourceOption) ResourceFixture {
	idx := atomic.AddUint64(&resourceCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := ResourceFixture{
		ID:         fmt.Sprintf("resource-%03d", idx),
		Kind:       application.KindCourse,
		UserID:     "admin",
		Title:      fmt.Sprintf("Resource %03d", idx),
		URL:        fmt.Sprintf("https://example.com/resources/%03d", idx),
		Tags:       []string{"go"},
		Attributes: map[string]string{},
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithResourceID overrides the generated resource ID.
func WithResourceID(id string) ResourceOption {
	return func(f *ResourceFixture) {
		f.ID = id
	}
}

// WithResourceKind sets the kind and the attributes it requires.
func WithResourceKind(kind application.Kind) ResourceOption {
	return func(f *ResourceFixture) {
		f.Kind = kind
		if f.Attributes == nil {
			f.Attributes = map[string]string{}
		}
		switch kind {
		case application.KindCertification:
			f.Attributes["issuer"] = "Cloud Academy"
		case application.KindSubscription:
			f.Attributes["price"] = "9.99"
			f.Attributes["billing_cycle"] = application.BillingMonthly
		case application.KindWorkshop:
			f.Attributes["date"] = referenceTime.AddDate(0, 0, 7).Format(time.DateOnly)
		}
	}
}

// WithResourceTitle overrides the generated title.
func WithResourceTitle(title string) ResourceOption {
	return func(f *ResourceFixture) {
		f.Title = title
	}
}

// WithResourceTags replaces the tags.
func WithResourceTags(tags ...string) ResourceOption {
	return func(f *ResourceFixture) {
		f.Tags = tags
	}
}

// WithResourceAttribute sets one attribute.
func WithResourceAttribute(key, value string) ResourceOption {
	return func(f *ResourceFixture) {
		if f.Attributes == nil {
			f.Attributes = map[string]string{}
		}
		f.Attributes[key] = value
	}
}

// WithResourceCreatedAt sets both timestamps.
func WithResourceCreatedAt(t time.Time) ResourceOption {
	return func(f *ResourceFixture) {
		f.CreatedAt = t
		f.UpdatedAt = t
	}
}

// Application returns the fixture as an application.Resource.
func (f ResourceFixture) Application() application.Resource {
	return application.Resource{
		ID:          f.ID,
		Kind:        f.Kind,
		UserID:      f.UserID,
		Title:       f.Title,
		Description: f.Description,
		URL:         f.URL,
		Category:    f.Category,
		Tags:        slices.Clone(f.Tags),
		Attributes:  maps.Clone(f.Attributes),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input returns the fixture as the input that would create it.
func (f ResourceFixture) Input() application.ResourceInput {
	return application.ResourceInput{
		Title:       f.Title,
		Description: f.Description,
		URL:         f.URL,
		Category:    f.Category,
		Tags:        slices.Clone(f.Tags),
		Attributes:  maps.Clone(f.Attributes),
	}
}

// Persistence returns the fixture as a persistence.Resource.
func (f ResourceFixture) Persistence() persistence.Resource {
	return persistence.Resource{
		ID:          f.ID,
		Kind:        string(f.Kind),
		UserID:      f.UserID,
		Title:       f.Title,
		Description: f.Description,
		URL:         f.URL,
		Category:    f.Category,
		Tags:        slices.Clone(f.Tags),
		Attributes:  maps.Clone(f.Attributes),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}
