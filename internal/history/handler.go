package history

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/xenai/xenai-server/internal/auth"
	"github.com/xenai/xenai-server/internal/routes"
	"github.com/xenai/xenai-server/pkg/handlers"
)

// Handler exposes conversation history over HTTP.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates the history handler.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "history"),
	}
}

// Routes returns the history route group.
func (h *Handler) Routes(mw *auth.Middleware) routes.Group {
	return routes.Group{
		Prefix:      "/api/chat",
		Description: "Conversation history",
		Routes: []routes.Route{
			{Method: http.MethodGet, Pattern: "/history", Handler: mw.RequireAuth(h.List)},
			{Method: http.MethodDelete, Pattern: "/history", Handler: mw.RequireAuth(h.Clear)},
		},
	}
}

// List returns the caller's retained conversation turns.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.sys.List(r.Context(), subject(r))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			"Failed to fetch chat history", err)
		return
	}
	handlers.RespondData(w, http.StatusOK, entries)
}

// Clear drops the caller's retained conversation turns.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Clear(r.Context(), subject(r)); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			"Failed to clear chat history", err)
		return
	}
	handlers.RespondMessage(w, http.StatusOK, "Chat history cleared")
}

func subject(r *http.Request) string {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		return strconv.FormatInt(claims.UserID, 10)
	}
	return "anonymous"
}
