// Package api provides the HTTP surface of the practice server.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/prepdesk/prepdesk/internal/workspace"
)

// Handler provides common handler utilities.
type Handler struct {
	ws          *workspace.Workspace
	defaultUser string
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(ws *workspace.Workspace, defaultUser string) *Handler {
	return &Handler{ws: ws, defaultUser: defaultUser}
}

// Routes builds the full router, middleware included.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/", h.ListSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/activate", h.ActivateSession)
			r.Post("/advance", h.AdvanceSession)
			r.Post("/jump", h.JumpSession)
			r.Post("/end", h.EndSession)
			r.Post("/reset", h.ResetSession)
			r.Get("/stats", h.SessionStats)
			r.Post("/questions/{questionID}/answer", h.SubmitAnswer)
		})
	})
	r.Get("/ws/sessions/{sessionID}/timer", h.TimerStream)

	return r
}

// userID resolves the caller's identity. Single-user deployments run
// without auth, everything belongs to the configured default user.
func (h *Handler) userID(r *http.Request) string {
	if u := r.Header.Get("X-Prepdesk-User"); u != "" {
		return u
	}
	return h.defaultUser
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
