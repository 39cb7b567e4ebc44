package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/knowledge-dashboard/internal/application"
	"github.com/example/knowledge-dashboard/internal/calendar"
	"github.com/example/knowledge-dashboard/internal/recurrence"
	"github.com/example/knowledge-dashboard/internal/testfixtures"
)

const (
	adminUser     = "admin"
	adminPassword = "secret"
)

type stubAuthenticator struct{}

func (stubAuthenticator) Authenticate(_ context.Context, username, password string) (application.Principal, error) {
	if username == adminUser && password == adminPassword {
		return application.Principal{UserID: adminUser, IsAdmin: true}, nil
	}
	return application.Principal{}, application.ErrInvalidCredentials
}

type testEnv struct {
	handler   http.Handler
	clock     *testfixtures.Clock
	events    *application.EventService
	resources *application.ResourceService
	view      *calendar.CalendarView
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEnv wires the full router over in-memory storage with the clock at
// 2025-06-15T10:00:00Z and UTC as the display zone.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := discardLogger()
	harness := testfixtures.NewMemoryHarness(t)
	factory := testfixtures.NewServiceFactory()
	events := factory.NewEventService(application.NewEventRepository(harness.Events), logger)
	resources := factory.NewResourceService(application.NewResourceRepository(harness.Resources), logger)
	now := factory.Clock.NowFunc()
	engine := recurrence.NewEngine(0, logger)

	view := factory.NewCalendarView(events, time.UTC, PrincipalOrReadOnly, logger, calendar.WithExpander(engine))

	router := NewRouter(RouterConfig{
		Events:    NewEventHandler(events, time.UTC, now, logger),
		Calendar:  NewCalendarHandler(events, CalendarOptions{Location: time.UTC, Now: now, PageSize: 2, Expander: engine}, logger),
		Dashboard: NewDashboardHandler(view, time.UTC, logger),
		Resources: NewResourceHandler(resources, logger),
		Middleware: []func(http.Handler) http.Handler{
			RequestLogger(logger),
			ResolvePrincipal(stubAuthenticator{}, logger),
		},
	})

	return &testEnv{handler: router, clock: factory.Clock, events: events, resources: resources, view: view}
}

type requestOption func(*http.Request)

func asAdmin() requestOption {
	return func(r *http.Request) {
		r.SetBasicAuth(adminUser, adminPassword)
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = strings.NewReader(string(raw))
	}

	req := httptest.NewRequest(method, target, reader)
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func (e *testEnv) createEvent(t *testing.T, body map[string]any) eventDTO {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/events", body, asAdmin())
	expectStatus(t, rec, http.StatusCreated)
	return decodeBody[eventDTO](t, rec)
}
