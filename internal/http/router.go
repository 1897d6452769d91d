package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// RouterConfig carries the handlers and middleware wired into the router.
type RouterConfig struct {
	Schedules  *ScheduleHandler
	Staff      *StaffHandler
	Tasks      *TaskHandler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the HTTP surface. The /daily-schedules paths mirror
// /schedules with the schedule type pinned to daily.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	if cfg.Schedules != nil {
		registerScheduleRoutes(mux, cfg.Schedules, "/schedules", "")
		registerScheduleRoutes(mux, cfg.Schedules, "/daily-schedules", "daily")
	}

	if cfg.Staff != nil {
		mux.HandleFunc("/staff", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Staff.List(w, r)
			case http.MethodPost:
				cfg.Staff.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/staff/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/staff/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithStaffID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				cfg.Staff.Get(w, r)
			case http.MethodPut:
				cfg.Staff.Update(w, r)
			case http.MethodDelete:
				cfg.Staff.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Tasks != nil {
		mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Tasks.List(w, r)
			case http.MethodPost:
				cfg.Tasks.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/tasks/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/tasks/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithTaskID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				cfg.Tasks.Get(w, r)
			case http.MethodPut:
				cfg.Tasks.Update(w, r)
			case http.MethodDelete:
				cfg.Tasks.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func registerScheduleRoutes(mux *http.ServeMux, handler *ScheduleHandler, prefix, forcedType string) {
	mux.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.List(w, r, forcedType)
		case http.MethodPost:
			handler.Create(w, r, forcedType)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	})

	mux.HandleFunc(prefix+"/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, prefix+"/")
		segments := strings.Split(rest, "/")

		switch {
		// staff/{staffId}/workload
		case len(segments) == 3 && segments[0] == "staff" && segments[2] == "workload":
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			r = r.WithContext(ContextWithStaffID(r.Context(), segments[1]))
			handler.Workload(w, r)

		// availability/{date}
		case len(segments) == 2 && segments[0] == "availability":
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			handler.Availability(w, r, segments[1])

		// report
		case len(segments) == 1 && segments[0] == "report":
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			handler.Report(w, r)

		// calendar/view
		case len(segments) == 2 && segments[0] == "calendar" && segments[1] == "view":
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			handler.Calendar(w, r)

		// {id}/notifications
		case len(segments) == 2 && segments[1] == "notifications":
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			r = r.WithContext(ContextWithScheduleID(r.Context(), segments[0]))
			handler.ResendNotifications(w, r)

		// {id}/assignments/{staffId}/status
		case len(segments) == 4 && segments[1] == "assignments" && segments[3] == "status":
			if r.Method != http.MethodPatch {
				methodNotAllowed(w, http.MethodPatch)
				return
			}
			ctx := ContextWithScheduleID(r.Context(), segments[0])
			ctx = ContextWithStaffID(ctx, segments[2])
			handler.UpdateAssignmentStatus(w, r.WithContext(ctx))

		// {id}
		case len(segments) == 1 && segments[0] != "":
			r = r.WithContext(ContextWithScheduleID(r.Context(), segments[0]))
			switch r.Method {
			case http.MethodGet:
				handler.Get(w, r)
			case http.MethodPut:
				handler.Update(w, r)
			case http.MethodDelete:
				handler.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}

		default:
			http.NotFound(w, r)
		}
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_ = json.NewEncoder(w).Encode(envelope{
		Success:   false,
		Message:   "method not allowed",
		Code:      http.StatusMethodNotAllowed,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
