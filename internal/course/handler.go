package course

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

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

// RegisterRoutes mounts the public read-only course endpoints.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/courses", h.ListCourses)
	router.Get("/courses/{name}/fees", h.GetFeeSchedule)
}

// RegisterAdminRoutes mounts reference-data management, gated on admin role
// by the caller.
func (h *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/courses", h.CreateCourse)
	router.Post("/course-fees", h.CreateFee)
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListCourses(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list courses", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "failed to list courses")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, courses)
}

type feeScheduleResponse struct {
	CourseName string           `json:"courseName"`
	Total      float64          `json:"total"`
	Breakdown  []CategoryAmount `json:"breakdown"`
}

func (h *Handler) GetFeeSchedule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	total, breakdown, err := h.service.ComputeTotal(r.Context(), name)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute fee schedule", "course", name, "error", err)
		httputil.RespondWithError(w, http.StatusServiceUnavailable, "fee schedule unavailable")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, feeScheduleResponse{
		CourseName: name,
		Total:      total,
		Breakdown:  breakdown,
	})
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var c Course
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || h.validate.Struct(&c) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request")
		return
	}

	h.logger.InfoContext(r.Context(), "creating course", "name", c.Name, "code", c.Code)
	created, err := h.service.CreateCourse(r.Context(), &c)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to create course", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "failed to create course")
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) CreateFee(w http.ResponseWriter, r *http.Request) {
	var fee CourseFee
	if err := json.NewDecoder(r.Body).Decode(&fee); err != nil || h.validate.Struct(&fee) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if _, err := h.service.GetCourseByName(r.Context(), fee.CourseName); err != nil {
		if errors.Is(err, ErrCourseNotFound) && fee.CourseName != GenericCourse {
			httputil.RespondWithError(w, http.StatusNotFound, "course not found")
			return
		}
		if !errors.Is(err, ErrCourseNotFound) {
			h.logger.ErrorContext(r.Context(), "failed to look up course", "error", err)
			httputil.RespondWithError(w, http.StatusInternalServerError, "failed to create course fee")
			return
		}
	}

	created, err := h.service.CreateFee(r.Context(), &fee)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to create course fee", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "failed to create course fee")
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}
