package fee_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"campus-linker/internal/admission"
	"campus-linker/internal/auth"
	"campus-linker/internal/fee"
	"campus-linker/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	status     *fee.Status
	statusErr  error
	payment    *fee.Fee
	payErr     error
	receiptErr error
}

func (s *stubService) GetStatus(ctx context.Context, accountID int, role string, admissionID int) (*fee.Status, error) {
	return s.status, s.statusErr
}

func (s *stubService) Pay(ctx context.Context, accountID int, role string, admissionID int, method string) (*fee.Fee, error) {
	return s.payment, s.payErr
}

func (s *stubService) GetReceiptData(ctx context.Context, accountID int, role string, admissionID int) (*fee.Fee, *admission.Admission, error) {
	return nil, nil, s.receiptErr
}

func newRouter(svc fee.Service) chi.Router {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	handler := fee.NewHandler(svc, logger, metrics.NewMock())
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func authed(req *http.Request, accountID int, role string) *http.Request {
	ctx := context.WithValue(req.Context(), auth.AccountIDKey, accountID)
	ctx = context.WithValue(ctx, auth.RoleKey, role)
	return req.WithContext(ctx)
}

func payBody(t *testing.T) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(fee.PayRequest{PaymentMethod: "UPI"})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestGetStatusHandler(t *testing.T) {
	t.Run("returns fee status", func(t *testing.T) {
		router := newRouter(&stubService{status: &fee.Status{AdmissionID: 1, TotalDue: 44000}})

		req := authed(httptest.NewRequest(http.MethodGet, "/admissions/1/fee", nil), 7, auth.RoleStudent)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var status fee.Status
		require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
		assert.Equal(t, 44000.0, status.TotalDue)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		router := newRouter(&stubService{})

		req := httptest.NewRequest(http.MethodGet, "/admissions/1/fee", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing admission", func(t *testing.T) {
		router := newRouter(&stubService{statusErr: admission.ErrAdmissionNotFound})

		req := authed(httptest.NewRequest(http.MethodGet, "/admissions/99/fee", nil), 7, auth.RoleStudent)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPayHandler(t *testing.T) {
	t.Run("records payment", func(t *testing.T) {
		router := newRouter(&stubService{payment: &fee.Fee{ID: 1, AdmissionID: 1, Amount: 44000, Status: fee.StatusCompleted}})

		req := authed(httptest.NewRequest(http.MethodPost, "/admissions/1/fee/payment", payBody(t)), 7, auth.RoleStudent)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("double payment conflicts", func(t *testing.T) {
		router := newRouter(&stubService{payErr: fee.ErrAlreadyPaid})

		req := authed(httptest.NewRequest(http.MethodPost, "/admissions/1/fee/payment", payBody(t)), 7, auth.RoleStudent)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("fee unavailable", func(t *testing.T) {
		router := newRouter(&stubService{payErr: fee.ErrFeeUnavailable})

		req := authed(httptest.NewRequest(http.MethodPost, "/admissions/1/fee/payment", payBody(t)), 7, auth.RoleStudent)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("foreign admission forbidden", func(t *testing.T) {
		router := newRouter(&stubService{payErr: fee.ErrForbidden})

		req := authed(httptest.NewRequest(http.MethodPost, "/admissions/1/fee/payment", payBody(t)), 8, auth.RoleStudent)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing payment method", func(t *testing.T) {
		router := newRouter(&stubService{})

		req := authed(httptest.NewRequest(http.MethodPost, "/admissions/1/fee/payment", bytes.NewReader([]byte(`{}`))), 7, auth.RoleStudent)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
