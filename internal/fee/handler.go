package fee

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"campus-linker/internal/admission"
	"campus-linker/internal/auth"
	"campus-linker/internal/course"
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
	router.Get("/admissions/{id}/fee", h.GetStatus)
	router.Post("/admissions/{id}/fee/payment", h.Pay)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	accountID, role, admissionID, ok := h.requestIdentity(w, r)
	if !ok {
		return
	}

	status, err := h.service.GetStatus(r.Context(), accountID, role, admissionID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, status)
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	accountID, role, admissionID, ok := h.requestIdentity(w, r)
	if !ok {
		return
	}

	var req PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "recording fee payment", "admission_id", admissionID, "method", req.PaymentMethod)

	payment, err := h.service.Pay(r.Context(), accountID, role, admissionID, req.PaymentMethod)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordFeePaid(r.Context(), payment.Amount)

	httputil.RespondWithJSON(w, http.StatusCreated, payment)
}

func (h *Handler) requestIdentity(w http.ResponseWriter, r *http.Request) (accountID int, role string, admissionID int, ok bool) {
	accountID, found := auth.GetAccountID(r.Context())
	if !found {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return 0, "", 0, false
	}
	role, _ = auth.GetRole(r.Context())

	admissionID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid admission ID")
		return 0, "", 0, false
	}
	return accountID, role, admissionID, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, admission.ErrAdmissionNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "admission not found")
	case errors.Is(err, ErrForbidden):
		httputil.RespondWithError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrAlreadyPaid):
		httputil.RespondWithError(w, http.StatusConflict, "fee already paid for this admission")
	case errors.Is(err, ErrFeeUnavailable):
		httputil.RespondWithError(w, http.StatusUnprocessableEntity, "fee is not available for this course")
	case errors.Is(err, course.ErrFeeNotConfigured):
		httputil.RespondWithError(w, http.StatusUnprocessableEntity, "fee schedule is not configured for this course")
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
