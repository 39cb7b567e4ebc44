package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/knowledge-dashboard/internal/application"
	"github.com/example/knowledge-dashboard/internal/calendar"
)

// CalendarOptions configures the stateless calendar renders.
type CalendarOptions struct {
	Location *time.Location
	Now      func() time.Time
	PageSize int
	Expander calendar.Expander
}

// CalendarHandler renders month, week and day views, the upcoming list and
// status counts from the stored events on every request.
type CalendarHandler struct {
	service   eventService
	opts      CalendarOptions
	responder responder
}

// NewCalendarHandler constructs a CalendarHandler.
func NewCalendarHandler(service eventService, opts CalendarOptions, logger *slog.Logger) *CalendarHandler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PageSize <= 0 {
		opts.PageSize = calendar.DefaultPageSize
	}
	return &CalendarHandler{service: service, opts: opts, responder: newResponder(logger)}
}

func (h *CalendarHandler) Render(w http.ResponseWriter, r *http.Request, view calendar.View) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	now := h.opts.Now().In(h.opts.Location)
	query := r.URL.Query()
	filter, err := calendar.ParseFilter(query.Get("category"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	ref, err := h.reference(query, now)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	events, err := h.load(r)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	from, to := calendar.DisplayRange(ref, view)
	shown := h.expand(events, from, to)

	resp := renderResponse{
		Now:      formatInstant(now, h.opts.Location),
		View:     string(view),
		Date:     calendar.FormatDate(ref),
		Category: string(filter),
	}
	switch view {
	case calendar.ViewMonth:
		month := toMonthDTO(calendar.BuildMonth(ref, now, shown, filter), now, h.opts.Location)
		resp.Month = &month
	case calendar.ViewWeek:
		week := toWeekDTO(calendar.BuildWeek(ref, now, shown, filter), now, h.opts.Location)
		resp.Week = &week
	case calendar.ViewDay:
		day := toDayDTO(calendar.BuildDay(ref, now, shown, filter), now, h.opts.Location)
		resp.Day = &day
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, calendar.ViewMonth)
}

func (h *CalendarHandler) Week(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, calendar.ViewWeek)
}

func (h *CalendarHandler) Day(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, calendar.ViewDay)
}

// Upcoming lists events starting at or after now, ascending, one page at a time.
func (h *CalendarHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	now := h.opts.Now().In(h.opts.Location)
	query := r.URL.Query()
	filter, err := calendar.ParseFilter(query.Get("category"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	page := 1
	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("página no válida: %q", raw))
			return
		}
	}

	events, err := h.load(r)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	upcoming := calendar.Upcoming(h.expand(events, now, now.Add(calendar.UpcomingHorizon)), now, filter)
	entries := make([]calendar.Entry, len(upcoming))
	for i, e := range upcoming {
		entries[i] = calendar.Annotate(now, e)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, upcomingResponse{
		Now:      formatInstant(now, h.opts.Location),
		Category: string(filter),
		Upcoming: toPageDTO(calendar.Paginate(entries, page, h.opts.PageSize), now, h.opts.Location),
	})
}

// Stats counts stored events per time status. Recurring events count by
// their occurrences.
func (h *CalendarHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	now := h.opts.Now().In(h.opts.Location)
	filter, err := calendar.ParseFilter(r.URL.Query().Get("category"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	events, err := h.load(r)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, statsResponse{
		Now:      formatInstant(now, h.opts.Location),
		Category: string(filter),
		Stats:    toStatsDTO(calendar.CountSeriesByStatus(now, events, h.expand(events, calendar.StartOfDay(now), now.Add(calendar.UpcomingHorizon)), filter)),
	})
}

func (h *CalendarHandler) load(r *http.Request) ([]calendar.Event, error) {
	stored, err := h.service.ListEvents(r.Context(), application.ListEventsParams{Principal: PrincipalOrReadOnly(r.Context())})
	if err != nil {
		return nil, err
	}
	events := make([]calendar.Event, 0, len(stored))
	for _, e := range stored {
		ev := e.Calendar()
		ev.Start = ev.Start.In(h.opts.Location)
		if ev.End != nil {
			end := ev.End.In(h.opts.Location)
			ev.End = &end
		}
		events = append(events, ev)
	}
	return events, nil
}

func (h *CalendarHandler) expand(events []calendar.Event, from, to time.Time) []calendar.Event {
	if h.opts.Expander == nil {
		return events
	}
	return h.opts.Expander.Expand(events, from, to)
}

func (h *CalendarHandler) reference(values url.Values, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(values.Get("date"))
	if raw == "" {
		return calendar.StartOfDay(now), nil
	}
	ts, err := calendar.ParseTimestamp(raw, h.opts.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha no válida: %q", raw)
	}
	return calendar.StartOfDay(ts), nil
}

type renderResponse struct {
	Now      string    `json:"now"`
	View     string    `json:"view"`
	Date     string    `json:"date"`
	Category string    `json:"category"`
	Month    *monthDTO `json:"month,omitempty"`
	Week     *weekDTO  `json:"week,omitempty"`
	Day      *dayDTO   `json:"day,omitempty"`
}

type upcomingResponse struct {
	Now      string  `json:"now"`
	Category string  `json:"category"`
	Upcoming pageDTO `json:"upcoming"`
}

type statsResponse struct {
	Now      string   `json:"now"`
	Category string   `json:"category"`
	Stats    statsDTO `json:"stats"`
}
