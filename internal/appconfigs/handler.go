package appconfigs

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/xenai/xenai-server/internal/auth"
	"github.com/xenai/xenai-server/internal/routes"
	"github.com/xenai/xenai-server/pkg/handlers"
)

// Handler exposes application settings over HTTP.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates the settings handler.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "appconfigs"),
	}
}

// Routes returns the settings route group. The public settings endpoint
// is unauthenticated; everything else requires a bearer token.
func (h *Handler) Routes(mw *auth.Middleware) routes.Group {
	return routes.Group{
		Prefix:      "/api/config",
		Description: "Application settings",
		Routes: []routes.Route{
			{Method: http.MethodGet, Pattern: "/app", Handler: h.PublicSettings},
			{Method: http.MethodGet, Pattern: "/app/{key}", Handler: mw.RequireAuth(h.GetByKey)},
			{Method: http.MethodPost, Pattern: "/app", Handler: mw.RequireAuth(h.Set)},
		},
	}
}

// PublicSettings returns every non-sensitive setting as a key/value map.
func (h *Handler) PublicSettings(w http.ResponseWriter, r *http.Request) {
	configs, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			"Failed to load application settings", err)
		return
	}

	public := make(map[string]Value)
	for _, cfg := range configs {
		if cfg.IsSensitive {
			continue
		}
		public[cfg.Key] = cfg.Value
	}

	handlers.RespondData(w, http.StatusOK, public)
}

// GetByKey returns a single setting by key.
func (h *Handler) GetByKey(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	cfg, err := h.sys.GetConfig(r.Context(), key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			handlers.RespondError(w, h.logger, http.StatusNotFound, err.Error(), nil)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			"Failed to read application setting", err)
		return
	}

	handlers.RespondData(w, http.StatusOK, cfg)
}

// Set creates or replaces a setting.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	var cmd SetCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			"Invalid request body", err)
		return
	}

	cfg, err := h.sys.Set(r.Context(), cmd)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			"Failed to save application setting", err)
		return
	}

	handlers.RespondData(w, http.StatusOK, cfg)
}
