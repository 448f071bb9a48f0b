package images

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/xenai/xenai-server/internal/auth"
	"github.com/xenai/xenai-server/internal/routes"
	"github.com/xenai/xenai-server/internal/storage"
	"github.com/xenai/xenai-server/pkg/handlers"
)

// Handler exposes image generation over HTTP.
type Handler struct {
	sys    System
	blobs  storage.System
	logger *slog.Logger
}

// NewHandler creates the image handler.
func NewHandler(sys System, blobs storage.System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		blobs:  blobs,
		logger: logger.With("handler", "images"),
	}
}

// Routes returns the image generation route group.
func (h *Handler) Routes(mw *auth.Middleware) routes.Group {
	return routes.Group{
		Prefix:      "/api/image",
		Description: "Image generation",
		Routes: []routes.Route{
			{Method: http.MethodPost, Pattern: "/generate", Handler: mw.RequireAuth(h.Generate)},
			{Method: http.MethodGet, Pattern: "/history", Handler: mw.RequireAuth(h.History)},
		},
	}
}

// StaticRoute serves stored images publicly by file name.
func (h *Handler) StaticRoute() routes.Route {
	return routes.Route{
		Method:  http.MethodGet,
		Pattern: "/images/{file}",
		Handler: h.Serve,
	}
}

// Generate produces and stores a new image.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	img, err := h.sys.Generate(r.Context(), subject(r), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	handlers.RespondCreated(w, "Image generated", img)
}

// History lists the caller's previous generations.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	images, err := h.sys.History(r.Context(), subject(r))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			"Failed to fetch image history", err)
		return
	}
	handlers.RespondData(w, http.StatusOK, images)
}

// Serve streams a stored image.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	data, err := h.blobs.Retrieve(r.Context(), r.PathValue("file"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			handlers.RespondError(w, h.logger, http.StatusNotFound, "Image not found", nil)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			"Failed to read image", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func subject(r *http.Request) string {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		return strconv.FormatInt(claims.UserID, 10)
	}
	return "anonymous"
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var upstream *UpstreamError
	switch {
	case errors.Is(err, ErrValidation):
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrModelLoading):
		handlers.RespondError(w, h.logger, http.StatusServiceUnavailable,
			"Image model is loading, try again shortly", nil)
	case errors.Is(err, ErrRateLimited):
		handlers.RespondError(w, h.logger, http.StatusTooManyRequests,
			"Image provider rate limit exceeded", nil)
	case errors.Is(err, ErrInvalidToken):
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			"Invalid Hugging Face API token", err)
	case errors.As(err, &upstream):
		handlers.RespondError(w, h.logger, http.StatusBadGateway,
			"Image generation failed", upstream)
	default:
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			"Image generation failed", err)
	}
}
