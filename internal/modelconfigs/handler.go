package modelconfigs

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/xenai/xenai-server/internal/auth"
	"github.com/xenai/xenai-server/internal/routes"
	"github.com/xenai/xenai-server/pkg/handlers"
	"github.com/xenai/xenai-server/pkg/pagination"
)

// Handler exposes provider configurations over HTTP.
type Handler struct {
	sys     System
	pageCfg pagination.Config
	logger  *slog.Logger
}

// NewHandler creates the configuration handler.
func NewHandler(sys System, pageCfg pagination.Config, logger *slog.Logger) *Handler {
	return &Handler{
		sys:     sys,
		pageCfg: pageCfg,
		logger:  logger.With("handler", "modelconfigs"),
	}
}

// Routes returns the configuration route group. Admin endpoints require
// a bearer token; the internal default endpoint is guarded by the
// shared internal token instead.
func (h *Handler) Routes(mw *auth.Middleware) routes.Group {
	return routes.Group{
		Prefix:      "/api/config",
		Description: "AI model configurations",
		Routes: []routes.Route{
			{Method: http.MethodGet, Pattern: "/ai-models", Handler: mw.RequireAuth(h.List)},
			{Method: http.MethodPost, Pattern: "/ai-models/search", Handler: mw.RequireAuth(h.Search)},
			{Method: http.MethodGet, Pattern: "/ai-models/default", Handler: mw.RequireAuth(h.GetDefault)},
			{Method: http.MethodGet, Pattern: "/ai-models/{name}", Handler: mw.RequireAuth(h.GetByName)},
			{Method: http.MethodPost, Pattern: "/ai-models", Handler: mw.RequireAuth(h.Create)},
			{Method: http.MethodPut, Pattern: "/ai-models/{id}", Handler: mw.RequireAuth(h.Update)},
			{Method: http.MethodDelete, Pattern: "/ai-models/{id}", Handler: mw.RequireAuth(h.Delete)},
			{Method: http.MethodGet, Pattern: "/internal/ai-model/default", Handler: mw.RequireInternalToken(h.GetDefault)},
		},
	}
}

// List returns all active configurations in public shape.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	configs, err := h.sys.List(r.Context())
	if err != nil {
		h.respondError(w, err, "Failed to fetch AI model configurations")
		return
	}
	handlers.RespondData(w, http.StatusOK, configs)
}

// Search returns a page of active configurations in public shape. The
// request body carries pagination plus optional filters.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var body struct {
		pagination.PageRequest
		Filters SearchFilters `json:"filters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			"Invalid request body", err)
		return
	}
	body.Normalize(h.pageCfg)

	result, err := h.sys.Search(r.Context(), body.PageRequest, body.Filters)
	if err != nil {
		h.respondError(w, err, "Failed to search AI model configurations")
		return
	}
	handlers.RespondData(w, http.StatusOK, result)
}

// GetDefault returns the resolved default configuration in internal
// shape, credential included. Trusted callers only.
func (h *Handler) GetDefault(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.sys.Resolve(r.Context(), "")
	if err != nil {
		h.respondError(w, err, "Failed to fetch default AI model configuration")
		return
	}
	handlers.RespondData(w, http.StatusOK, cfg)
}

// GetByName returns a named configuration in internal shape.
func (h *Handler) GetByName(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.sys.Resolve(r.Context(), r.PathValue("name"))
	if err != nil {
		h.respondError(w, err, "Failed to fetch AI model configuration")
		return
	}
	handlers.RespondData(w, http.StatusOK, cfg)
}

// Create stores a new configuration and returns its public shape.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			"Invalid request body", err)
		return
	}

	cfg, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		h.respondError(w, err, "Failed to create AI model configuration")
		return
	}
	handlers.RespondCreated(w, "AI model configuration created", cfg.Public())
}

// Update applies a partial update and returns the public shape.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			"Invalid request body", err)
		return
	}

	cfg, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		h.respondError(w, err, "Failed to update AI model configuration")
		return
	}
	handlers.RespondData(w, http.StatusOK, cfg.Public())
}

// Delete soft-deletes a configuration.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	deleted, err := h.sys.Delete(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "Failed to delete AI model configuration")
		return
	}
	if !deleted {
		handlers.RespondError(w, h.logger, http.StatusNotFound,
			"AI model configuration not found", nil)
		return
	}
	handlers.RespondMessage(w, http.StatusOK, "AI model configuration deleted")
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			"Invalid configuration id", err)
		return 0, false
	}
	return id, true
}

// respondError maps domain errors onto HTTP statuses. Corrupt-record
// detail stays in logs; callers get the generic message.
func (h *Handler) respondError(w http.ResponseWriter, err error, generic string) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoConfigs):
		handlers.RespondError(w, h.logger, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ErrValidation):
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrCorrupt):
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, generic, err)
	default:
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, generic, err)
	}
}
