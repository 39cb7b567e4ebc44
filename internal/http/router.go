package http

import (
	"net/http"
	"strings"

	"github.com/example/knowledge-dashboard/internal/application"
)

type RouterConfig struct {
	Events     *EventHandler
	Calendar   *CalendarHandler
	Dashboard  *DashboardHandler
	Resources  *ResourceHandler
	Health     func(r *http.Request) error
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		if cfg.Health != nil {
			if err := cfg.Health(r); err != nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.Events != nil {
		mux.HandleFunc("/api/events", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Events.List(w, r)
			case http.MethodPost:
				cfg.Events.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/events.ics", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Events.Export(w, r)
		})
		mux.HandleFunc("/api/events/import", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Events.Import(w, r)
		})
		mux.HandleFunc("/api/events/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/events/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithEventID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				cfg.Events.Get(w, r)
			case http.MethodPut:
				cfg.Events.Update(w, r)
			case http.MethodDelete:
				cfg.Events.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Calendar != nil {
		for path, handle := range map[string]http.HandlerFunc{
			"/api/calendar/month":    cfg.Calendar.Month,
			"/api/calendar/week":     cfg.Calendar.Week,
			"/api/calendar/day":      cfg.Calendar.Day,
			"/api/calendar/upcoming": cfg.Calendar.Upcoming,
			"/api/calendar/stats":    cfg.Calendar.Stats,
		} {
			mux.HandleFunc(path, getOnly(handle))
		}
	}

	if cfg.Dashboard != nil {
		d := cfg.Dashboard
		mux.HandleFunc("/api/dashboard/calendar", getOnly(d.Snapshot))
		mux.HandleFunc("/api/dashboard/calendar/reload", methodOnly(http.MethodPost, d.Reload))
		mux.HandleFunc("/api/dashboard/calendar/view", methodOnly(http.MethodPut, d.SwitchView))
		mux.HandleFunc("/api/dashboard/calendar/navigate", methodOnly(http.MethodPost, d.Navigate))
		mux.HandleFunc("/api/dashboard/calendar/category", methodOnly(http.MethodPut, d.SelectCategory))
		mux.HandleFunc("/api/dashboard/calendar/page", methodOnly(http.MethodPut, d.SetPage))
		mux.HandleFunc("/api/dashboard/calendar/submit", methodOnly(http.MethodPost, d.Submit))
		mux.HandleFunc("/api/dashboard/calendar/modal", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				d.OpenModal(w, r)
			case http.MethodDelete:
				d.CloseModal(w, r)
			default:
				methodNotAllowed(w, http.MethodPost, http.MethodDelete)
			}
		})
		mux.HandleFunc("/api/dashboard/calendar/events/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/dashboard/calendar/events/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			d.DeleteEvent(w, r.WithContext(ContextWithEventID(r.Context(), id)))
		})
	}

	if cfg.Resources != nil {
		mux.HandleFunc("/api/resources/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/resources/"), "/")
			parts := strings.Split(rest, "/")
			if rest == "" || len(parts) > 2 {
				http.NotFound(w, r)
				return
			}
			kind, err := application.ParseKind(parts[0])
			if err != nil {
				http.NotFound(w, r)
				return
			}

			if len(parts) == 1 {
				r = r.WithContext(ContextWithResource(r.Context(), kind, ""))
				switch r.Method {
				case http.MethodGet:
					cfg.Resources.List(w, r)
				case http.MethodPost:
					cfg.Resources.Create(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
				return
			}

			r = r.WithContext(ContextWithResource(r.Context(), kind, parts[1]))
			switch r.Method {
			case http.MethodPut:
				cfg.Resources.Update(w, r)
			case http.MethodDelete:
				cfg.Resources.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func getOnly(next http.HandlerFunc) http.HandlerFunc {
	return methodOnly(http.MethodGet, next)
}

func methodOnly(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			methodNotAllowed(w, method)
			return
		}
		next(w, r)
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
