package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/example/knowledge-dashboard/internal/calendar"
	"github.com/example/knowledge-dashboard/internal/logging"
)

// DashboardHandler exposes the single-user calendar screen held on the server.
// Requests are serialized so that each operation and the snapshot it returns
// observe the same state.
type DashboardHandler struct {
	mu        sync.Mutex
	view      *calendar.CalendarView
	loc       *time.Location
	logger    *slog.Logger
	responder responder
}

// NewDashboardHandler constructs a DashboardHandler over view.
func NewDashboardHandler(view *calendar.CalendarView, loc *time.Location, logger *slog.Logger) *DashboardHandler {
	if loc == nil {
		loc = time.Local
	}
	logger = logging.OrDefault(logger)
	return &DashboardHandler{view: view, loc: loc, logger: logger, responder: newResponder(logger)}
}

func (h *DashboardHandler) available(w http.ResponseWriter) bool {
	if h == nil || h.view == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *DashboardHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writeSnapshot(w, r, http.StatusOK)
}

// Reload replaces the held events with the stored ones.
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.view.Load(r.Context()); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.writeSnapshot(w, r, http.StatusOK)
}

func (h *DashboardHandler) SwitchView(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	var req struct {
		View string `json:"view"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	view, err := calendar.ParseView(req.View)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.view.SwitchView(view); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.writeSnapshot(w, r, http.StatusOK)
}

// Navigate moves the active view backwards, forwards, to today or to a date.
func (h *DashboardHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	var req struct {
		Direction string `json:"direction"`
		Date      string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	switch strings.ToLower(strings.TrimSpace(req.Direction)) {
	case "previous", "prev":
		h.view.Navigate(calendar.Previous)
	case "next":
		h.view.Navigate(calendar.Next)
	case "today":
		h.view.GoToday()
	case "date":
		date, err := calendar.ParseTimestamp(req.Date, h.loc)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("fecha no válida: %q", req.Date))
			return
		}
		h.view.GoTo(date)
	default:
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("dirección no válida: %q", req.Direction))
		return
	}
	h.writeSnapshot(w, r, http.StatusOK)
}

func (h *DashboardHandler) SelectCategory(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	var req struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	filter, err := calendar.ParseFilter(req.Category)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.view.SelectCategory(filter); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.writeSnapshot(w, r, http.StatusOK)
}

func (h *DashboardHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	var req struct {
		Page int `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.view.SetPage(req.Page)
	h.writeSnapshot(w, r, http.StatusOK)
}

// OpenModal opens the create modal, or the edit modal for event_id.
func (h *DashboardHandler) OpenModal(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	var req struct {
		Mode    string `json:"mode"`
		EventID string `json:"event_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	switch calendar.Modal(strings.ToLower(strings.TrimSpace(req.Mode))) {
	case calendar.ModalCreate:
		h.view.OpenCreate()
	case calendar.ModalEdit:
		if err := h.view.OpenEdit(strings.TrimSpace(req.EventID)); err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
	default:
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("modo no válido: %q", req.Mode))
		return
	}
	h.writeSnapshot(w, r, http.StatusOK)
}

// CloseModal discards the open modal and its form.
func (h *DashboardHandler) CloseModal(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	switch h.view.Modal() {
	case calendar.ModalCreate:
		h.view.CloseCreate()
	case calendar.ModalEdit:
		h.view.CloseEdit()
	}
	h.writeSnapshot(w, r, http.StatusOK)
}

// Submit sends the form of the open modal. On failure the modal stays open
// with the submitted values.
func (h *DashboardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	form, err := decodeForm(r.Body)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.view.Submit(r.Context(), form); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.writeSnapshot(w, r, http.StatusOK)
}

// DeleteEvent removes an event through the confirmation dialog. The confirm
// query parameter answers the dialog; a declined request changes nothing.
func (h *DashboardHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	dialog := &queryDialog{confirmed: confirmed(r.URL.Query())}

	h.mu.Lock()
	defer h.mu.Unlock()
	deleted, err := h.view.RequestDelete(r.Context(), eventID, dialog)
	if err != nil {
		logging.Scoped(r.Context(), h.logger, "handler", "DashboardHandler", "DeleteEvent", "event_id", eventID).
			WarnContext(r.Context(), "delete reported to user", "alerts", dialog.alerts)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if !deleted {
		h.responder.writeError(r.Context(), w, http.StatusPreconditionRequired, errConfirmationRequired)
		return
	}
	h.writeSnapshot(w, r, http.StatusOK)
}

func (h *DashboardHandler) writeSnapshot(w http.ResponseWriter, r *http.Request, status int) {
	h.responder.writeJSON(r.Context(), w, status, toSnapshotDTO(h.view.Snapshot(), h.loc))
}

// queryDialog answers the delete confirmation from the request and records
// alerts for the log.
type queryDialog struct {
	confirmed bool
	alerts    []string
}

func (d *queryDialog) Confirm(string) bool {
	return d.confirmed
}

func (d *queryDialog) Alert(message string) {
	d.alerts = append(d.alerts, message)
}

type optionDTO struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

type snapshotDTO struct {
	Now        string            `json:"now"`
	View       string            `json:"view"`
	ViewLabel  string            `json:"view_label"`
	Modal      string            `json:"modal"`
	Form       calendar.Form     `json:"form"`
	Category   string            `json:"category"`
	References map[string]string `json:"references"`
	Month      *monthDTO         `json:"month,omitempty"`
	Week       *weekDTO          `json:"week,omitempty"`
	Day        *dayDTO           `json:"day,omitempty"`
	Upcoming   pageDTO           `json:"upcoming"`
	Stats      statsDTO          `json:"stats"`
	Categories []optionDTO       `json:"categories"`
	Views      []optionDTO       `json:"views"`
}

func toSnapshotDTO(s calendar.Snapshot, loc *time.Location) snapshotDTO {
	dto := snapshotDTO{
		Now:        formatInstant(s.Now, loc),
		View:       string(s.View),
		ViewLabel:  s.View.Label(),
		Modal:      string(s.Modal),
		Form:       s.Form,
		Category:   string(s.Category),
		References: make(map[string]string, len(s.References)),
		Upcoming:   toPageDTO(s.Upcoming, s.Now, loc),
		Stats:      toStatsDTO(s.Stats),
	}
	for view, ref := range s.References {
		dto.References[string(view)] = calendar.FormatDate(ref)
	}
	if s.Month != nil {
		month := toMonthDTO(*s.Month, s.Now, loc)
		dto.Month = &month
	}
	if s.Week != nil {
		week := toWeekDTO(*s.Week, s.Now, loc)
		dto.Week = &week
	}
	if s.Day != nil {
		day := toDayDTO(*s.Day, s.Now, loc)
		dto.Day = &day
	}
	for _, c := range append([]calendar.Category{calendar.CategoryAll}, calendar.Categories()...) {
		dto.Categories = append(dto.Categories, optionDTO{Value: string(c), Label: c.Label(), Color: c.Color()})
	}
	for _, v := range calendar.Views() {
		dto.Views = append(dto.Views, optionDTO{Value: string(v), Label: v.Label()})
	}
	return dto
}
