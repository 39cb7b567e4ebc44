package application

import (
	"time"

	"github.com/example/knowledge-dashboard/internal/calendar"
)

// Principal represents the caller invoking a service method. The dashboard has
// one user; IsAdmin separates the owner from read-only visitors.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// ReadOnlyPrincipal is the principal of requests without admin credentials.
func ReadOnlyPrincipal() Principal {
	return Principal{UserID: "viewer"}
}

// EventInput captures caller provided event fields.
type EventInput struct {
	Title       string            `json:"title" validate:"notblank,max=200"`
	Description string            `json:"description" validate:"max=4000"`
	Start       time.Time         `json:"start_date" validate:"required"`
	End         *time.Time        `json:"end_date"`
	Category    calendar.Category `json:"category" validate:"required,category"`
	AllDay      bool              `json:"is_all_day"`
	Recurrence  string            `json:"recurrence" validate:"omitempty,max=500,rrule"`
}

// EventInputFromDraft converts a validated calendar form.
func EventInputFromDraft(draft calendar.Draft) EventInput {
	return EventInput{
		Title:       draft.Title,
		Description: draft.Description,
		Start:       draft.Start,
		End:         draft.End,
		Category:    draft.Category,
		AllDay:      draft.AllDay,
		Recurrence:  draft.Recurrence,
	}
}

// Event represents a persisted calendar event.
type Event struct {
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

// Calendar returns the event as the calendar core sees it.
func (e Event) Calendar() calendar.Event {
	return calendar.Event{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Start:       e.Start,
		End:         e.End,
		Category:    e.Category,
		AllDay:      e.AllDay,
		Recurrence:  e.Recurrence,
	}
}

// CreateEventParams wraps the data required to create an event.
type CreateEventParams struct {
	Principal Principal
	Input     EventInput
}

// UpdateEventParams wraps the data required to update an event.
type UpdateEventParams struct {
	Principal Principal
	EventID   string
	Input     EventInput
}

// ListEventsParams narrows an event listing. Nil bounds are open.
type ListEventsParams struct {
	Principal Principal
	From      *time.Time
	To        *time.Time
	Category  calendar.Category
}

// ResourceInput captures caller provided resource fields. TagsInput is the raw
// comma separated text of the tag field; it is merged into Tags.
type ResourceInput struct {
	Title       string            `json:"title" validate:"notblank,max=200"`
	Description string            `json:"description" validate:"max=4000"`
	URL         string            `json:"url" validate:"omitempty,url,max=2048"`
	Category    string            `json:"category" validate:"max=100"`
	Tags        []string          `json:"tags" validate:"max=50,dive,max=50"`
	TagsInput   string            `json:"tags_input"`
	Attributes  map[string]string `json:"attributes" validate:"max=30,dive,keys,notblank,max=50,endkeys,max=500"`
}

// Resource represents a persisted dashboard resource.
type Resource struct {
	ID          string
	Kind        Kind
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

// CreateResourceParams wraps the data required to create a resource.
type CreateResourceParams struct {
	Principal Principal
	Kind      Kind
	Input     ResourceInput
}

// UpdateResourceParams wraps the data required to update a resource.
type UpdateResourceParams struct {
	Principal  Principal
	Kind       Kind
	ResourceID string
	Input      ResourceInput
}

// ListResourcesParams filters a resource listing. Empty fields match everything.
type ListResourcesParams struct {
	Principal Principal
	Kind      Kind
	Search    string
	Category  string
	Tag       string
}
