package admission

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"campus-linker/internal/auth"
	"campus-linker/internal/httputil"
	"campus-linker/internal/metrics"
	"campus-linker/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxUploadSize = 16 << 20 // 16 MiB for the whole multipart form

type Handler struct {
	service  Service
	storage  upload.Storage
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, storage upload.Storage, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		storage:  storage,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/admissions", h.Submit)
	router.Get("/admissions", h.List)
	router.Get("/admissions/{id}", h.Get)
	router.Get("/admissions/{id}/student", h.GetStudent)
}

type submitResponse struct {
	Admission *Admission `json:"admission"`
	Student   *Student   `json:"student"`
}

// Submit accepts the multipart admission form, stores the optional documents
// and creates the admission together with its student record.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := SubmitRequest{
		Name:      r.FormValue("student_name"),
		Course:    r.FormValue("course_name"),
		Email:     r.FormValue("email"),
		BirthDate: r.FormValue("date_of_birth"),
		Father:    r.FormValue("father_name"),
		Mother:    r.FormValue("mother_name"),
		MobileNo:  r.FormValue("mobile_no"),
		AadharNo:  r.FormValue("aadhar_no"),
		Address:   r.FormValue("address"),
		State:     r.FormValue("state"),
		District:  r.FormValue("district"),
		Pincode:   r.FormValue("pincode"),
		Gender:    r.FormValue("gender"),
	}
	var parseErr error
	req.PreviousCGPA, parseErr = floatField(r, "previous_year_cgpa")
	if parseErr == nil {
		req.ObtainMarks, parseErr = intField(r, "obtain_marks")
	}
	if parseErr == nil {
		req.TotalMarks, parseErr = intField(r, "total_marks")
	}
	if parseErr == nil {
		req.Percentage, parseErr = floatField(r, "percentage")
	}
	if parseErr == nil {
		req.PassingYear, parseErr = intField(r, "passing_year")
	}
	if parseErr != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, parseErr.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.logger.WarnContext(r.Context(), "admission validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	documents := []struct {
		field string
		dest  *string
	}{
		{"photo", &req.PhotoPath},
		{"id_proof", &req.IDProofPath},
		{"sign", &req.SignPath},
		{"marklist", &req.MarklistPath},
	}
	for _, doc := range documents {
		path, err := h.storeDocument(r, doc.field)
		if err != nil {
			if errors.Is(err, upload.ErrUnsupportedFileType) {
				httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			h.logger.ErrorContext(r.Context(), "failed to store document", "field", doc.field, "error", err)
			httputil.RespondWithError(w, http.StatusInternalServerError, "failed to store document")
			return
		}
		*doc.dest = path
	}

	h.logger.InfoContext(r.Context(), "submitting admission", "account_id", accountID, "course", req.Course)

	adm, student, err := h.service.Submit(r.Context(), accountID, req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "admission submission failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "failed to submit admission")
		return
	}

	h.metrics.RecordAdmissionSubmitted(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, submitResponse{Admission: adm, Student: student})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	admissions, err := h.service.ListByAccount(r.Context(), accountID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list admissions", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "failed to list admissions")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, admissions)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, _ := auth.GetRole(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid admission ID")
		return
	}

	adm, err := h.service.Get(r.Context(), accountID, role, id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, adm)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, _ := auth.GetRole(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid admission ID")
		return
	}

	// Ownership check rides on the admission lookup.
	if _, err := h.service.Get(r.Context(), accountID, role, id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	student, err := h.service.GetStudentByAdmission(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, student)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrAdmissionNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "admission not found")
	case errors.Is(err, ErrStudentNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "student not found")
	case errors.Is(err, ErrForbidden):
		httputil.RespondWithError(w, http.StatusForbidden, "forbidden")
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// storeDocument saves one optional multipart file, returning "" when the
// field is absent.
func (h *Handler) storeDocument(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	return h.storage.Save(header.Filename, file)
}

// floatField parses an optional numeric form value. An absent or empty field
// is nil, a non-empty value that does not parse is an error.
func floatField(r *http.Request, field string) (*float64, error) {
	v := r.FormValue(field)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid value for %s", field)
	}
	return &f, nil
}

func intField(r *http.Request, field string) (*int, error) {
	v := r.FormValue(field)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("invalid value for %s", field)
	}
	return &n, nil
}
