package generate

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/xenai/xenai-server/internal/auth"
	"github.com/xenai/xenai-server/internal/modelconfigs"
	"github.com/xenai/xenai-server/internal/routes"
	"github.com/xenai/xenai-server/pkg/handlers"
)

// Handler exposes the generation features over HTTP.
type Handler struct {
	sys        System
	production bool
	logger     *slog.Logger
}

// NewHandler creates the generation handler. In production mode upstream
// error detail is withheld from responses.
func NewHandler(sys System, production bool, logger *slog.Logger) *Handler {
	return &Handler{
		sys:        sys,
		production: production,
		logger:     logger.With("handler", "generate"),
	}
}

// Routes returns the generation route group. Everything requires a
// bearer token.
func (h *Handler) Routes(mw *auth.Middleware) routes.Group {
	return routes.Group{
		Prefix:      "/api",
		Description: "Text generation",
		Routes: []routes.Route{
			{Method: http.MethodPost, Pattern: "/chat/message", Handler: mw.RequireAuth(h.Chat)},
			{Method: http.MethodPost, Pattern: "/story/generate", Handler: mw.RequireAuth(h.Story)},
			{Method: http.MethodPost, Pattern: "/resume/generate", Handler: mw.RequireAuth(h.Resume)},
		},
	}
}

// Chat generates a conversational reply.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Message == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, "Message is required", nil)
		return
	}

	result, err := h.sys.Chat(r.Context(), h.subject(r), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	handlers.RespondData(w, http.StatusOK, result)
}

// Story generates a story from a prompt.
func (h *Handler) Story(w http.ResponseWriter, r *http.Request) {
	var req StoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Prompt == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, "Prompt is required", nil)
		return
	}

	result, err := h.sys.Story(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	handlers.RespondData(w, http.StatusOK, result)
}

// Resume generates resume content.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	var req ResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UserInput == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, "User input is required", nil)
		return
	}

	result, err := h.sys.Resume(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	handlers.RespondData(w, http.StatusOK, result)
}

// subject identifies the caller for history retention.
func (h *Handler) subject(r *http.Request) string {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		return strconv.FormatInt(claims.UserID, 10)
	}
	return "anonymous"
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var upstream *UpstreamError
	switch {
	case errors.Is(err, modelconfigs.ErrNotFound):
		handlers.RespondError(w, h.logger, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ErrNotConfigured):
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			"AI service not configured", err)
	case errors.Is(err, modelconfigs.ErrCorrupt):
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			"AI service configuration error", err)
	case errors.As(err, &upstream):
		h.respondUpstream(w, upstream)
	default:
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			"AI generation failed", err)
	}
}

// respondUpstream maps provider failures: rate-limit and model-loading
// statuses pass through, everything else becomes a 502. Detail is only
// attached outside production.
func (h *Handler) respondUpstream(w http.ResponseWriter, upstream *UpstreamError) {
	status := http.StatusBadGateway
	if upstream.Status == http.StatusTooManyRequests || upstream.Status == http.StatusServiceUnavailable {
		status = upstream.Status
	}

	message := "AI provider request failed"
	if !h.production && upstream.Detail != "" {
		message += ": " + upstream.Detail
	}
	handlers.RespondError(w, h.logger, status, message, upstream)
}
