package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/knowledge-dashboard/internal/logging"
)

// View selects one of the calendar renderings.
type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
	ViewDay   View = "day"
)

// Views lists every calendar rendering.
func Views() []View {
	return []View{ViewMonth, ViewWeek, ViewDay}
}

// ParseView resolves a view name.
func ParseView(value string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(value)))
	switch v {
	case ViewMonth, ViewWeek, ViewDay:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidView, value)
}

// Label returns the display label for the view.
func (v View) Label() string {
	switch v {
	case ViewMonth:
		return "Mes"
	case ViewWeek:
		return "Semana"
	case ViewDay:
		return "Día"
	}
	return ""
}

// Modal is the open dialog of the calendar.
type Modal string

const (
	ModalNone   Modal = "none"
	ModalCreate Modal = "create"
	ModalEdit   Modal = "edit"
)

var (
	ErrInvalidView   = errors.New("calendar: invalid view")
	ErrEventNotFound = errors.New("calendar: event not found")
	// ErrModalState is returned when an operation does not fit the open modal.
	ErrModalState = errors.New("calendar: operation not allowed in current modal state")
)

// EventStore is the persistence collaborator behind the calendar.
type EventStore interface {
	ListEvents(ctx context.Context) ([]Event, error)
	CreateEvent(ctx context.Context, draft Draft) (Event, error)
	UpdateEvent(ctx context.Context, id string, draft Draft) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// Expander replaces recurring events with their occurrences inside [from, to).
// Events without a recurrence rule pass through unchanged.
type Expander interface {
	Expand(events []Event, from, to time.Time) []Event
}

// Dialog asks the user for confirmation and shows blocking messages.
type Dialog interface {
	Confirm(message string) bool
	Alert(message string)
}

const (
	deleteConfirmMessage = "¿Estás seguro de que quieres eliminar este evento?"
	deleteFailedMessage  = "Error al eliminar el evento"
)

// UpcomingHorizon bounds recurrence expansion for the upcoming list.
const UpcomingHorizon = 90 * 24 * time.Hour

// Option configures a CalendarView.
type Option func(*CalendarView)

// WithLogger sets the fallback logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *CalendarView) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithPageSize sets the upcoming list page size.
func WithPageSize(size int) Option {
	return func(v *CalendarView) {
		v.pager = NewPager(size)
	}
}

// WithExpander enables recurrence expansion.
func WithExpander(expander Expander) Option {
	return func(v *CalendarView) {
		v.expander = expander
	}
}

// WithLocation sets the display location used for form parsing and rendering.
func WithLocation(loc *time.Location) Option {
	return func(v *CalendarView) {
		if loc != nil {
			v.loc = loc
		}
	}
}

// CalendarView holds the state of the calendar screen: the active rendering,
// one reference date per rendering, the category filter, the open modal and
// the upcoming list cursor.
type CalendarView struct {
	mu sync.Mutex

	store    EventStore
	expander Expander
	loc      *time.Location
	logger   *slog.Logger

	now    time.Time
	view   View
	refs   map[View]time.Time
	filter Category
	modal  Modal
	form   Form
	pager  *Pager
	events []Event
}

// NewCalendarView constructs a view positioned on today in month view.
func NewCalendarView(store EventStore, now time.Time, opts ...Option) *CalendarView {
	v := &CalendarView{
		store:  store,
		loc:    time.Local,
		logger: slog.Default(),
		view:   ViewMonth,
		filter: CategoryAll,
		modal:  ModalNone,
		pager:  NewPager(DefaultPageSize),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.now = now.In(v.loc)
	today := StartOfDay(v.now)
	v.refs = map[View]time.Time{ViewMonth: today, ViewWeek: today, ViewDay: today}
	v.form = DefaultForm(v.now, v.loc)
	return v
}

func (v *CalendarView) loggerFor(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return logging.Scoped(ctx, v.logger, "component", "CalendarView", operation, attrs...)
}

// Load replaces the event list with the collaborator's current contents.
func (v *CalendarView) Load(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loadLocked(ctx)
}

func (v *CalendarView) loadLocked(ctx context.Context) error {
	if v.store == nil {
		return nil
	}
	events, err := v.store.ListEvents(ctx)
	if err != nil {
		v.loggerFor(ctx, "Load").ErrorContext(ctx, "failed to load events", "error", err)
		return err
	}
	v.events = make([]Event, 0, len(events))
	for _, e := range events {
		v.events = append(v.events, v.normalize(e))
	}
	return nil
}

func (v *CalendarView) normalize(e Event) Event {
	out := cloneEvent(e)
	out.Start = out.Start.In(v.loc)
	if out.End != nil {
		end := out.End.In(v.loc)
		out.End = &end
	}
	return out
}

// Refresh reclassifies every event against now.
func (v *CalendarView) Refresh(now time.Time) {
	v.mu.Lock()
	v.now = now.In(v.loc)
	v.mu.Unlock()
}

// Now returns the instant of the last refresh.
func (v *CalendarView) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// CurrentView returns the active rendering.
func (v *CalendarView) CurrentView() View {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.view
}

// SwitchView activates view. Each rendering keeps its own reference date.
func (v *CalendarView) SwitchView(view View) error {
	if _, err := ParseView(string(view)); err != nil {
		return err
	}
	v.mu.Lock()
	v.view = view
	v.mu.Unlock()
	return nil
}

// Reference returns the reference date of view.
func (v *CalendarView) Reference(view View) time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.refs[view]
}

// Navigate moves the active rendering's reference date by one unit.
func (v *CalendarView) Navigate(dir Direction) time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	ref := Navigate(v.refs[v.view], v.view, dir)
	v.refs[v.view] = ref
	return ref
}

// GoToday moves the active rendering's reference date to today.
func (v *CalendarView) GoToday() {
	v.mu.Lock()
	v.refs[v.view] = StartOfDay(v.now)
	v.mu.Unlock()
}

// GoTo sets the active rendering's reference date.
func (v *CalendarView) GoTo(date time.Time) {
	v.mu.Lock()
	v.refs[v.view] = StartOfDay(date.In(v.loc))
	v.mu.Unlock()
}

// SelectCategory changes the category filter.
func (v *CalendarView) SelectCategory(filter Category) error {
	if filter != CategoryAll && !filter.Assignable() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, string(filter))
	}
	v.mu.Lock()
	v.filter = filter
	v.mu.Unlock()
	return nil
}

// SetPage moves the upcoming list to page n.
func (v *CalendarView) SetPage(n int) {
	v.mu.Lock()
	v.pager.SetPage(n)
	v.mu.Unlock()
}

// Modal returns the open modal.
func (v *CalendarView) Modal() Modal {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.modal
}

// Form returns a copy of the form backing the open modal.
func (v *CalendarView) Form() Form {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.form
}

// OpenCreate opens the create modal with a default form.
func (v *CalendarView) OpenCreate() {
	v.mu.Lock()
	v.modal = ModalCreate
	v.form = DefaultForm(v.now, v.loc)
	v.mu.Unlock()
}

// CloseCreate closes the create modal and discards the form.
func (v *CalendarView) CloseCreate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.modal == ModalCreate {
		v.closeLocked()
	}
}

// OpenEdit opens the edit modal seeded from a copy of the stored event.
func (v *CalendarView) OpenEdit(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, e := range v.events {
		if e.ID == id {
			v.modal = ModalEdit
			v.form = FormFromEvent(e, v.loc)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrEventNotFound, id)
}

// CloseEdit closes the edit modal and discards the form.
func (v *CalendarView) CloseEdit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.modal == ModalEdit {
		v.closeLocked()
	}
}

func (v *CalendarView) closeLocked() {
	v.modal = ModalNone
	v.form = DefaultForm(v.now, v.loc)
}

// Submit dispatches form to the create or edit path depending on the open modal.
func (v *CalendarView) Submit(ctx context.Context, form Form) (Event, error) {
	switch v.Modal() {
	case ModalCreate:
		return v.SubmitCreate(ctx, form)
	case ModalEdit:
		return v.SubmitEdit(ctx, form)
	}
	return Event{}, ErrModalState
}

// SubmitCreate validates form and hands it to the collaborator. The modal stays
// open with the submitted form when either step fails.
func (v *CalendarView) SubmitCreate(ctx context.Context, form Form) (Event, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.modal != ModalCreate {
		return Event{}, ErrModalState
	}
	v.form = form

	draft, err := form.Draft(v.loc)
	if err != nil {
		return Event{}, err
	}
	if v.store == nil {
		return Event{}, errors.New("calendar: event store not configured")
	}

	created, err := v.store.CreateEvent(ctx, draft)
	if err != nil {
		v.loggerFor(ctx, "SubmitCreate").ErrorContext(ctx, "failed to create event", "error", err)
		return Event{}, err
	}

	v.events = append(v.events, v.normalize(created))
	v.closeLocked()
	return created, nil
}

// SubmitEdit validates form and updates the event it was opened for.
func (v *CalendarView) SubmitEdit(ctx context.Context, form Form) (Event, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.modal != ModalEdit {
		return Event{}, ErrModalState
	}
	id := v.form.ID
	form.ID = id
	v.form = form

	draft, err := form.Draft(v.loc)
	if err != nil {
		return Event{}, err
	}
	if v.store == nil {
		return Event{}, errors.New("calendar: event store not configured")
	}

	updated, err := v.store.UpdateEvent(ctx, id, draft)
	if err != nil {
		v.loggerFor(ctx, "SubmitEdit", "event_id", id).ErrorContext(ctx, "failed to update event", "error", err)
		return Event{}, err
	}

	normalized := v.normalize(updated)
	for i := range v.events {
		if v.events[i].ID == id {
			v.events[i] = normalized
		}
	}
	v.closeLocked()
	return updated, nil
}

// RequestDelete removes the event after the dialog confirms. Declining issues no
// collaborator call. Failures are logged and reported through the dialog.
func (v *CalendarView) RequestDelete(ctx context.Context, id string, dialog Dialog) (bool, error) {
	if dialog == nil || !dialog.Confirm(deleteConfirmMessage) {
		return false, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.store == nil {
		return false, errors.New("calendar: event store not configured")
	}
	if err := v.store.DeleteEvent(ctx, id); err != nil {
		v.loggerFor(ctx, "RequestDelete", "event_id", id).ErrorContext(ctx, "failed to delete event", "error", err)
		dialog.Alert(deleteFailedMessage)
		return false, err
	}

	kept := v.events[:0]
	for _, e := range v.events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	v.events = kept
	if v.modal == ModalEdit && v.form.ID == id {
		v.closeLocked()
	}
	return true, nil
}

// Events returns a copy of the loaded events.
func (v *CalendarView) Events() []Event {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Event, len(v.events))
	for i, e := range v.events {
		out[i] = cloneEvent(e)
	}
	return out
}

// Snapshot is the rendered state of the calendar screen.
type Snapshot struct {
	Now        time.Time
	View       View
	Modal      Modal
	Form       Form
	Category   Category
	References map[View]time.Time
	Month      *MonthView
	Week       *WeekView
	Day        *DayView
	Upcoming   Page[Entry]
	Stats      Stats
}

// Snapshot renders the active view, the upcoming page and the status counts.
func (v *CalendarView) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := Snapshot{
		Now:        v.now,
		View:       v.view,
		Modal:      v.modal,
		Form:       v.form,
		Category:   v.filter,
		References: make(map[View]time.Time, len(v.refs)),
		Stats:      CountSeriesByStatus(v.now, v.events, v.expand(StartOfDay(v.now), v.now.Add(UpcomingHorizon)), v.filter),
	}
	for k, ref := range v.refs {
		snap.References[k] = ref
	}

	ref := v.refs[v.view]
	from, to := DisplayRange(ref, v.view)
	shown := v.expand(from, to)
	switch v.view {
	case ViewMonth:
		month := BuildMonth(ref, v.now, shown, v.filter)
		snap.Month = &month
	case ViewWeek:
		week := BuildWeek(ref, v.now, shown, v.filter)
		snap.Week = &week
	case ViewDay:
		day := BuildDay(ref, v.now, shown, v.filter)
		snap.Day = &day
	}

	upcoming := Upcoming(v.expand(v.now, v.now.Add(UpcomingHorizon)), v.now, v.filter)
	entries := make([]Entry, len(upcoming))
	for i, e := range upcoming {
		entries[i] = Annotate(v.now, e)
	}
	snap.Upcoming = Apply(v.pager, entries, v.filter)
	return snap
}

func (v *CalendarView) expand(from, to time.Time) []Event {
	if v.expander == nil {
		return v.events
	}
	expanded := v.expander.Expand(v.events, from, to)
	out := make([]Event, 0, len(expanded))
	for _, e := range expanded {
		out = append(out, v.normalize(e))
	}
	return out
}
