package fee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campus-linker/internal/admission"
	"campus-linker/internal/auth"
	"campus-linker/internal/course"
	"campus-linker/internal/events"
)

var (
	// ErrFeeUnavailable means the resolved total for the course is not a
	// positive amount, so there is nothing meaningful to collect.
	ErrFeeUnavailable = errors.New("fee is not available for this course")
	ErrForbidden      = errors.New("admission does not belong to account")
)

// Status is the fee view for one admission: the resolved schedule plus the
// completed payment, if any.
type Status struct {
	AdmissionID int                     `json:"admissionId"`
	CourseName  string                  `json:"courseName"`
	TotalDue    float64                 `json:"totalDue"`
	Breakdown   []course.CategoryAmount `json:"breakdown"`
	Paid        bool                    `json:"paid"`
	Payment     *Fee                    `json:"payment,omitempty"`
}

type Service interface {
	GetStatus(ctx context.Context, accountID int, role string, admissionID int) (*Status, error)
	Pay(ctx context.Context, accountID int, role string, admissionID int, method string) (*Fee, error)
	GetReceiptData(ctx context.Context, accountID int, role string, admissionID int) (*Fee, *admission.Admission, error)
}

type service struct {
	repo       Repository
	admissions admission.Repository
	courses    course.Service
	publisher  events.Publisher
	logger     *slog.Logger
}

func NewService(repo Repository, admissions admission.Repository, courses course.Service, publisher events.Publisher, logger *slog.Logger) Service {
	return &service{
		repo:       repo,
		admissions: admissions,
		courses:    courses,
		publisher:  publisher,
		logger:     logger,
	}
}

type feePaidEvent struct {
	FeeID       int     `json:"feeId"`
	AdmissionID int     `json:"admissionId"`
	Course      string  `json:"courseName"`
	Amount      float64 `json:"amount"`
}

func (s *service) GetStatus(ctx context.Context, accountID int, role string, admissionID int) (*Status, error) {
	adm, err := s.ownedAdmission(ctx, accountID, role, admissionID)
	if err != nil {
		return nil, err
	}

	total, breakdown, err := s.courses.ComputeTotal(ctx, adm.Course)
	if err != nil {
		return nil, fmt.Errorf("computing fee total: %w", err)
	}

	status := &Status{
		AdmissionID: adm.ID,
		CourseName:  adm.Course,
		TotalDue:    total,
		Breakdown:   breakdown,
	}

	payment, err := s.repo.GetCompletedByAdmission(ctx, admissionID)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			return status, nil
		}
		return nil, err
	}

	status.Paid = true
	status.Payment = payment
	return status, nil
}

// Pay records the full resolved amount as a single completed payment. The
// unique index on completed fees makes a second attempt fail with
// ErrAlreadyPaid no matter how the requests interleave.
func (s *service) Pay(ctx context.Context, accountID int, role string, admissionID int, method string) (*Fee, error) {
	adm, err := s.ownedAdmission(ctx, accountID, role, admissionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetCompletedByAdmission(ctx, admissionID); err == nil {
		return nil, ErrAlreadyPaid
	} else if !errors.Is(err, ErrPaymentNotFound) {
		return nil, err
	}

	total, _, err := s.courses.ComputeTotal(ctx, adm.Course)
	if err != nil {
		return nil, fmt.Errorf("computing fee total: %w", err)
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: course %q", ErrFeeUnavailable, adm.Course)
	}

	now := time.Now()
	payment := &Fee{
		AdmissionID:   adm.ID,
		StudentName:   adm.Name,
		Course:        adm.Course,
		TotalFee:      total,
		Amount:        total,
		PaymentMethod: method,
		Status:        StatusCompleted,
		PaymentDate:   &now,
	}

	payment, err = s.repo.CreatePayment(ctx, payment)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.FeePaid, feePaidEvent{
		FeeID:       payment.ID,
		AdmissionID: adm.ID,
		Course:      adm.Course,
		Amount:      payment.Amount,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish fee event", "error", err)
	}

	return payment, nil
}

// GetReceiptData returns the completed payment and its admission, or
// ErrPaymentNotFound when no payment exists yet.
func (s *service) GetReceiptData(ctx context.Context, accountID int, role string, admissionID int) (*Fee, *admission.Admission, error) {
	adm, err := s.ownedAdmission(ctx, accountID, role, admissionID)
	if err != nil {
		return nil, nil, err
	}

	payment, err := s.repo.GetCompletedByAdmission(ctx, admissionID)
	if err != nil {
		return nil, nil, err
	}
	return payment, adm, nil
}

func (s *service) ownedAdmission(ctx context.Context, accountID int, role string, admissionID int) (*admission.Admission, error) {
	adm, err := s.admissions.GetByID(ctx, admissionID)
	if err != nil {
		return nil, err
	}
	if adm.AccountID != accountID && role != auth.RoleAdmin {
		return nil, ErrForbidden
	}
	return adm, nil
}
