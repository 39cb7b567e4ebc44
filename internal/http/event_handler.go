package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/knowledge-dashboard/internal/application"
	"github.com/example/knowledge-dashboard/internal/calendar"
	"github.com/example/knowledge-dashboard/internal/ics"
	"github.com/example/knowledge-dashboard/internal/logging"
)

// maxImportBytes bounds the size of an uploaded iCalendar file.
const maxImportBytes = 5 << 20

type eventService interface {
	CreateEvent(ctx context.Context, params application.CreateEventParams) (application.Event, error)
	UpdateEvent(ctx context.Context, params application.UpdateEventParams) (application.Event, error)
	DeleteEvent(ctx context.Context, principal application.Principal, eventID string) error
	GetEvent(ctx context.Context, principal application.Principal, eventID string) (application.Event, error)
	ListEvents(ctx context.Context, params application.ListEventsParams) ([]application.Event, error)
}

// EventHandler serves the stored event collection and its iCalendar form.
type EventHandler struct {
	service   eventService
	decoder   *ics.Decoder
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
	responder responder
}

// NewEventHandler constructs an EventHandler. Zone-less dates are read in loc.
func NewEventHandler(service eventService, loc *time.Location, now func() time.Time, logger *slog.Logger) *EventHandler {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	logger = logging.OrDefault(logger)
	return &EventHandler{
		service:   service,
		decoder:   ics.NewDecoder(loc, logger),
		loc:       loc,
		now:       now,
		logger:    logger,
		responder: newResponder(logger),
	}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, err := h.listParams(r.URL.Query(), PrincipalOrReadOnly(r.Context()))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	events, err := h.service.ListEvents(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	now := h.now()
	out := make([]eventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, toStoredEventDTO(e, now, h.loc))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{Events: out})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	event, err := h.service.GetEvent(r.Context(), PrincipalOrReadOnly(r.Context()), eventID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toStoredEventDTO(event, h.now(), h.loc))
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	form, err := decodeForm(r.Body)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	draft, err := form.Draft(h.loc)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), application.CreateEventParams{
		Principal: PrincipalOrReadOnly(r.Context()),
		Input:     application.EventInputFromDraft(draft),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toStoredEventDTO(event, h.now(), h.loc))
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	form, err := decodeForm(r.Body)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	draft, err := form.Draft(h.loc)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), application.UpdateEventParams{
		Principal: PrincipalOrReadOnly(r.Context()),
		EventID:   eventID,
		Input:     application.EventInputFromDraft(draft),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toStoredEventDTO(event, h.now(), h.loc))
}

// Delete removes an event. The request must carry confirm=true; without it
// nothing is removed and the service is not called.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}
	if !confirmed(r.URL.Query()) {
		h.responder.writeError(r.Context(), w, http.StatusPreconditionRequired, errConfirmationRequired)
		return
	}

	if err := h.service.DeleteEvent(r.Context(), PrincipalOrReadOnly(r.Context()), eventID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Export writes every stored event as an iCalendar attachment.
func (h *EventHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	events, err := h.service.ListEvents(r.Context(), application.ListEventsParams{Principal: PrincipalOrReadOnly(r.Context())})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := ics.Encode(&buf, events, h.now()); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Scoped(r.Context(), h.logger, "handler", "EventHandler", "Export").ErrorContext(r.Context(), "failed to write calendar", "error", err)
	}
}

// Import creates one event per VEVENT of the uploaded iCalendar body.
func (h *EventHandler) Import(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal := PrincipalOrReadOnly(r.Context())
	if !principal.IsAdmin {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	imported, skipped, err := h.decoder.Decode(body)
	if err != nil {
		if errors.Is(err, ics.ErrEmptyCalendar) {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	resp := importResponse{Skipped: skipped, Failed: []importFailure{}}
	for _, item := range imported {
		_, err := h.service.CreateEvent(r.Context(), application.CreateEventParams{Principal: principal, Input: item.Input})
		if err != nil {
			failure := importFailure{UID: item.UID, Message: err.Error()}
			var vErr *application.ValidationError
			if errors.As(err, &vErr) {
				failure.Errors = vErr.FieldErrors
			}
			resp.Failed = append(resp.Failed, failure)
			continue
		}
		resp.Imported++
	}

	logging.Scoped(r.Context(), h.logger, "handler", "EventHandler", "Import").InfoContext(r.Context(), "calendar imported",
		"imported", resp.Imported, "skipped", resp.Skipped, "failed", len(resp.Failed))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *EventHandler) listParams(values url.Values, principal application.Principal) (application.ListEventsParams, error) {
	params := application.ListEventsParams{Principal: principal}

	if from := strings.TrimSpace(values.Get("from")); from != "" {
		ts, err := calendar.ParseTimestamp(from, h.loc)
		if err != nil {
			return params, err
		}
		params.From = &ts
	}
	if to := strings.TrimSpace(values.Get("to")); to != "" {
		ts, err := calendar.ParseTimestamp(to, h.loc)
		if err != nil {
			return params, err
		}
		params.To = &ts
	}
	category, err := calendar.ParseFilter(values.Get("category"))
	if err != nil {
		return params, err
	}
	params.Category = category
	return params, nil
}

// decodeForm reads a JSON event form. Category values are case-insensitive.
func decodeForm(body io.Reader) (calendar.Form, error) {
	var form calendar.Form
	if err := json.NewDecoder(body).Decode(&form); err != nil {
		return calendar.Form{}, err
	}
	form.ID = ""
	form.Category = calendar.Category(strings.ToUpper(strings.TrimSpace(string(form.Category))))
	return form, nil
}

func confirmed(values url.Values) bool {
	ok, err := strconv.ParseBool(strings.TrimSpace(values.Get("confirm")))
	return err == nil && ok
}

type listEventsResponse struct {
	Events []eventDTO `json:"events"`
}

type importFailure struct {
	UID     string            `json:"uid"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type importResponse struct {
	Imported int             `json:"imported"`
	Skipped  int             `json:"skipped"`
	Failed   []importFailure `json:"failed"`
}
