// Package api exposes the dashboard over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"dayboard/internal/auth"
	"dayboard/internal/model"

	"github.com/goccy/go-json"
)

// DashboardService is what the handlers need from the dashboard layer.
type DashboardService interface {
	Emails(ctx context.Context, userID string) ([]model.NormalizedMessage, error)
	Thread(ctx context.Context, userID, threadID string) ([]model.ThreadMessage, error)
	Meetings(ctx context.Context, userID string) ([]model.NormalizedEvent, error)
	Dashboard(ctx context.Context, userID string) (model.Dashboard, error)
}

type Handler struct {
	svc    DashboardService
	secret []byte
	logger *slog.Logger
}

func NewHandler(svc DashboardService, sessionSecret string, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		secret: []byte(sessionSecret),
		logger: logger.With("component", "api"),
	}
}

// Routes returns the mux with all endpoints registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.Handle("GET /api/calendar", h.RequireSession(http.HandlerFunc(h.Calendar)))
	mux.Handle("GET /api/emails", h.RequireSession(http.HandlerFunc(h.Emails)))
	mux.Handle("GET /api/dashboard", h.RequireSession(http.HandlerFunc(h.Dashboard)))
	return LogRequests(h.logger, mux)
}

// sendJSON sends a JSON response
func sendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, statusCode int, message string) {
	sendJSON(w, statusCode, map[string]string{"error": message})
}

// fail maps core errors to status codes. Details stay in the log.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		sendError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, auth.ErrNoCredential):
		sendError(w, http.StatusUnauthorized, "No access token")
	default:
		h.logger.Error(message, "path", r.URL.Path, "user_id", UserID(r.Context()), "error", err)
		sendError(w, http.StatusInternalServerError, message)
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	meetings, err := h.svc.Meetings(r.Context(), UserID(r.Context()))
	if err != nil {
		h.fail(w, r, err, "Failed to fetch calendar")
		return
	}
	if meetings == nil {
		meetings = []model.NormalizedEvent{}
	}
	sendJSON(w, http.StatusOK, map[string]any{"meetings": meetings})
}

// Emails serves the ranked list, or one expanded thread when threadId is set.
func (h *Handler) Emails(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	if threadID := r.URL.Query().Get("threadId"); threadID != "" {
		messages, err := h.svc.Thread(r.Context(), userID, threadID)
		if err != nil {
			h.fail(w, r, err, "Failed to fetch emails")
			return
		}
		if messages == nil {
			messages = []model.ThreadMessage{}
		}
		sendJSON(w, http.StatusOK, map[string]any{"messages": messages})
		return
	}

	emails, err := h.svc.Emails(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch emails")
		return
	}
	if emails == nil {
		emails = []model.NormalizedMessage{}
	}
	sendJSON(w, http.StatusOK, map[string]any{"emails": emails})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context(), UserID(r.Context()))
	if err != nil {
		h.fail(w, r, err, "Failed to fetch dashboard")
		return
	}
	if d.Tasks == nil {
		d.Tasks = []model.PriorityTask{}
	}
	if d.Meetings == nil {
		d.Meetings = []model.NormalizedEvent{}
	}
	sendJSON(w, http.StatusOK, d)
}
