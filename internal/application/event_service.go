package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/knowledge-dashboard/internal/calendar"
	"github.com/example/knowledge-dashboard/internal/logging"
	"github.com/example/knowledge-dashboard/internal/persistence"
)

// EventRepository captures the persistence operations needed by the service.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
}

// EventFilter narrows repository listings.
type EventFilter struct {
	From     *time.Time
	To       *time.Time
	Category calendar.Category
}

// EventService orchestrates validation, authorization, and persistence for calendar events.
type EventService struct {
	events      EventRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEventService constructs an event service with the provided dependencies.
func NewEventService(events EventRepository, idGenerator func() string, now func() time.Time) *EventService {
	return NewEventServiceWithLogger(events, idGenerator, now, nil)
}

// NewEventServiceWithLogger constructs an event service with a specified logger.
func NewEventServiceWithLogger(events EventRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{events: events, idGenerator: idGenerator, now: now, logger: logging.OrDefault(logger)}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// CreateEvent validates input and persists a new event for the administrator.
func (s *EventService) CreateEvent(ctx context.Context, params CreateEventParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateEvent",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "event created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	input := normalizeEventInput(params.Input)
	if vErr := validateEventInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	event = Event{
		ID:          s.idGenerator(),
		UserID:      params.Principal.UserID,
		Title:       input.Title,
		Description: input.Description,
		Start:       input.Start,
		End:         input.End,
		Category:    input.Category,
		AllDay:      input.AllDay,
		Recurrence:  input.Recurrence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if s.events == nil {
		return
	}

	var persisted Event
	persisted, err = s.events.CreateEvent(ctx, event)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}
	event = persisted
	return
}

// UpdateEvent validates input and replaces an existing event.
func (s *EventService) UpdateEvent(ctx context.Context, params UpdateEventParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateEvent",
		"principal_id", params.Principal.UserID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event updated")
	}()

	var existing Event
	existing, err = s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	input := normalizeEventInput(params.Input)
	if vErr := validateEventInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Title = input.Title
	updated.Description = input.Description
	updated.Start = input.Start
	updated.End = input.End
	updated.Category = input.Category
	updated.AllDay = input.AllDay
	updated.Recurrence = input.Recurrence
	updated.UpdatedAt = s.now()

	event, err = s.events.UpdateEvent(ctx, updated)
	if err != nil {
		err = mapEventRepoError(err)
	}
	return
}

// DeleteEvent removes an event when requested by the administrator.
func (s *EventService) DeleteEvent(ctx context.Context, principal Principal, eventID string) error {
	if s == nil {
		return fmt.Errorf("EventService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.events == nil {
		return fmt.Errorf("event repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteEvent",
		"principal_id", principal.UserID,
		"event_id", eventID,
	)

	if err := s.events.DeleteEvent(ctx, eventID); err != nil {
		err = mapEventRepoError(err)
		logger.ErrorContext(ctx, "failed to delete event", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "event deleted")
	return nil
}

// GetEvent returns a single event. Reading is open to every principal.
func (s *EventService) GetEvent(ctx context.Context, principal Principal, eventID string) (Event, error) {
	if s == nil {
		return Event{}, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return Event{}, ErrNotFound
	}
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapEventRepoError(err)
		s.loggerWith(ctx, "GetEvent", "principal_id", principal.UserID, "event_id", eventID).
			ErrorContext(ctx, "failed to get event", "error", err, "error_kind", ErrorKind(err))
		return Event{}, err
	}
	return event, nil
}

// ListEvents returns events ordered by start. Recurring events are always
// included because their occurrences may fall inside the bounds.
func (s *EventService) ListEvents(ctx context.Context, params ListEventsParams) (events []Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListEvents",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list events", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(events)).DebugContext(ctx, "events listed")
	}()

	filter := EventFilter{From: params.From, To: params.To}
	if params.Category != "" && params.Category != calendar.CategoryAll {
		filter.Category = params.Category
	}
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		vErr := &ValidationError{}
		vErr.add("to", "to must be after from")
		err = vErr
		return
	}

	events, err = s.events.ListEvents(ctx, filter)
	if err != nil {
		err = mapEventRepoError(err)
	}
	return
}

func normalizeEventInput(input EventInput) EventInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Recurrence = strings.TrimSpace(input.Recurrence)
	if input.Category == "" {
		input.Category = calendar.CategoryWork
	}
	if input.AllDay {
		if !input.Start.IsZero() {
			input.Start = calendar.StartOfDay(input.Start)
		}
		input.End = nil
	}
	return input
}

func validateEventInput(input EventInput) *ValidationError {
	vErr := validateStruct(input)
	if input.End != nil && !input.Start.IsZero() && input.End.Before(input.Start) {
		vErr.add("end_date", "end_date must not be before start_date")
	}
	return vErr
}

func mapEventRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("event", "event violates a storage constraint")
		return vErr
	}
	return err
}
