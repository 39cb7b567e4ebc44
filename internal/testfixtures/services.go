package testfixtures

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/knowledge-dashboard/internal/application"
	"github.com/example/knowledge-dashboard/internal/calendar"
	"github.com/example/knowledge-dashboard/internal/recurrence"
)

// Admin is the principal fixtures use for writes.
var Admin = application.Principal{UserID: "admin", IsAdmin: true}

// ServiceFactory builds services and calendar views that share one clock and
// one id sequence.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

type ServiceFactoryOption func(*ServiceFactory)

func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	f := &ServiceFactory{}
	for _, opt := range opts {
		opt(f)
	}
	if f.Clock == nil {
		f.Clock = NewClock(time.Time{})
	}
	if f.IDGenerator == nil {
		f.IDGenerator = NewIDGenerator("id")
	}
	return f
}

func WithClock(clock *Clock) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Clock = clock }
}

func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.IDGenerator = generator }
}

func (f *ServiceFactory) NewEventService(events application.EventRepository, logger *slog.Logger) *application.EventService {
	return application.NewEventServiceWithLogger(events, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), logger)
}

func (f *ServiceFactory) NewResourceService(resources application.ResourceRepository, logger *slog.Logger) *application.ResourceService {
	return application.NewResourceServiceWithLogger(resources, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), logger)
}

// NewCalendarView builds a view over events positioned at the factory clock,
// with recurrence expansion. principal resolves the caller for each store
// call; nil means read-only. Extra options override the defaults.
func (f *ServiceFactory) NewCalendarView(events *application.EventService, loc *time.Location, principal func(context.Context) application.Principal, logger *slog.Logger, opts ...calendar.Option) *calendar.CalendarView {
	defaults := []calendar.Option{
		calendar.WithLocation(loc),
		calendar.WithExpander(recurrence.NewEngine(0, logger)),
		calendar.WithLogger(logger),
	}
	return calendar.NewCalendarView(application.NewCalendarStore(events, principal), f.Clock.Now(), append(defaults, opts...)...)
}
