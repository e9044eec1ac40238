package exam

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"campus-linker/internal/admission"
	"campus-linker/internal/auth"
	"campus-linker/internal/httputil"
	"campus-linker/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/students/{id}/exams", h.ListExams)
	router.Post("/students/{id}/exams/{examID}/registration", h.SubmitForm)
	router.Get("/students/{id}/results", h.ListResults)
}

func (h *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/exams", h.CreateExam)
	router.Put("/results/{id}", h.UpdateResult)
}

func (h *Handler) ListExams(w http.ResponseWriter, r *http.Request) {
	accountID, role, studentID, ok := h.requestIdentity(w, r)
	if !ok {
		return
	}

	groups, err := h.service.ListAvailableExams(r.Context(), accountID, role, studentID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, groups)
}

func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	accountID, role, studentID, ok := h.requestIdentity(w, r)
	if !ok {
		return
	}

	examID, err := strconv.Atoi(chi.URLParam(r, "examID"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid exam ID")
		return
	}

	h.logger.InfoContext(r.Context(), "submitting exam form", "student_id", studentID, "exam_id", examID)

	result, err := h.service.SubmitExamForm(r.Context(), accountID, role, studentID, examID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordExamFormSubmitted(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	accountID, role, studentID, ok := h.requestIdentity(w, r)
	if !ok {
		return
	}

	results, err := h.service.ListResults(r.Context(), accountID, role, studentID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, results)
}

func (h *Handler) CreateExam(w http.ResponseWriter, r *http.Request) {
	var req CreateExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	exam, err := h.service.CreateExam(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, exam)
}

func (h *Handler) UpdateResult(w http.ResponseWriter, r *http.Request) {
	resultID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid result ID")
		return
	}

	var req UpdateResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.UpdateResult(r.Context(), resultID, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordResultGraded(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, result)
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
	case errors.Is(err, ErrExamNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "exam not found")
	case errors.Is(err, ErrResultNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "result not found")
	case errors.Is(err, ErrForbidden):
		httputil.RespondWithError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrAlreadySubmitted):
		httputil.RespondWithError(w, http.StatusConflict, "exam form already submitted")
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
