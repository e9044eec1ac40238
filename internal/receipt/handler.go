package receipt

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"campus-linker/internal/admission"
	"campus-linker/internal/auth"
	"campus-linker/internal/fee"
	"campus-linker/internal/httputil"
	"campus-linker/internal/metrics"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	fees    fee.Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHandler(fees fee.Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		fees:    fees,
		logger:  logger,
		metrics: m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/admissions/{id}/fee/receipt", h.Download)
}

// Download streams the PDF receipt. There is no receipt before a completed
// payment, so a pending admission gets 404.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, _ := auth.GetRole(r.Context())

	admissionID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid admission ID")
		return
	}

	payment, adm, err := h.fees.GetReceiptData(r.Context(), accountID, role, admissionID)
	if err != nil {
		switch {
		case errors.Is(err, admission.ErrAdmissionNotFound):
			httputil.RespondWithError(w, http.StatusNotFound, "admission not found")
		case errors.Is(err, fee.ErrPaymentNotFound):
			httputil.RespondWithError(w, http.StatusNotFound, "no completed payment for this admission")
		case errors.Is(err, fee.ErrForbidden):
			httputil.RespondWithError(w, http.StatusForbidden, "forbidden")
		default:
			h.logger.ErrorContext(r.Context(), "failed to load receipt data", "error", err)
			httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	pdfBytes, err := Generate(payment, adm)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render receipt", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "failed to render receipt")
		return
	}

	h.metrics.RecordReceiptGenerated(r.Context())

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%d.pdf", admissionID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdfBytes); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write receipt response", "error", err)
	}
}
