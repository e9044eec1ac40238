package activity

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"campus-linker/internal/admission"
	"campus-linker/internal/auth"
	"campus-linker/internal/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/students/{id}/activities", h.Log)
	router.Get("/students/{id}/activities", h.List)
}

func (h *Handler) Log(w http.ResponseWriter, r *http.Request) {
	accountID, role, studentID, ok := h.requestIdentity(w, r)
	if !ok {
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "logging activity", "student_id", studentID, "category", req.Category)

	activity, err := h.service.Log(r.Context(), accountID, role, studentID, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, activity)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accountID, role, studentID, ok := h.requestIdentity(w, r)
	if !ok {
		return
	}

	activities, err := h.service.ListByStudent(r.Context(), accountID, role, studentID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, activities)
}

func (h *Handler) requestIdentity(w http.ResponseWriter, r *http.Request) (accountID int, role string, studentID int, ok bool) {
	accountID, found := auth.GetAccountID(r.Context())
	if !found {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return 0, "", 0, false
	}
	role, _ = auth.GetRole(r.Context())

	studentID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student ID")
		return 0, "", 0, false
	}
	return accountID, role, studentID, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, admission.ErrStudentNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "student not found")
	case errors.Is(err, admission.ErrAdmissionNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "admission not found")
	case errors.Is(err, ErrForbidden):
		httputil.RespondWithError(w, http.StatusForbidden, "forbidden")
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
