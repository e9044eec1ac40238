package dashboard

import (
	"log/slog"
	"net/http"

	"campus-linker/internal/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	repo   Repository
	logger *slog.Logger
}

func NewHandler(repo Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/dashboard", h.Summary)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.repo.Summary(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build dashboard summary", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "failed to build dashboard summary")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, summary)
}
