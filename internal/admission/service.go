package admission

import (
	"context"
	"errors"
	"log/slog"

	"campus-linker/internal/auth"
	"campus-linker/internal/events"
)

var ErrForbidden = errors.New("admission does not belong to account")

type Service interface {
	Submit(ctx context.Context, accountID int, req SubmitRequest) (*Admission, *Student, error)
	Get(ctx context.Context, accountID int, role string, admissionID int) (*Admission, error)
	ListByAccount(ctx context.Context, accountID int) ([]Admission, error)
	GetStudentByAdmission(ctx context.Context, admissionID int) (*Student, error)
}

type service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

type admissionSubmittedEvent struct {
	AdmissionID int    `json:"admissionId"`
	StudentID   int    `json:"studentId"`
	AccountID   int    `json:"accountId"`
	Course      string `json:"courseName"`
}

// Submit persists the admission (status Submitted) and its paired student
// record. Repeat admissions per account are allowed.
func (s *service) Submit(ctx context.Context, accountID int, req SubmitRequest) (*Admission, *Student, error) {
	adm := &Admission{
		AccountID:    accountID,
		Name:         req.Name,
		Course:       req.Course,
		Email:        req.Email,
		BirthDate:    req.BirthDate,
		Father:       req.Father,
		Mother:       req.Mother,
		MobileNo:     req.MobileNo,
		AadharNo:     req.AadharNo,
		Address:      req.Address,
		State:        req.State,
		District:     req.District,
		Pincode:      req.Pincode,
		Gender:       req.Gender,
		PreviousCGPA: req.PreviousCGPA,
		ObtainMarks:  req.ObtainMarks,
		TotalMarks:   req.TotalMarks,
		Percentage:   req.Percentage,
		PassingYear:  req.PassingYear,
		PhotoPath:    req.PhotoPath,
		IDProofPath:  req.IDProofPath,
		SignPath:     req.SignPath,
		MarklistPath: req.MarklistPath,
		Status:       StatusSubmitted,
	}

	adm, student, err := s.repo.CreateWithStudent(ctx, adm)
	if err != nil {
		return nil, nil, err
	}

	if err := s.publisher.Publish(ctx, events.AdmissionSubmitted, admissionSubmittedEvent{
		AdmissionID: adm.ID,
		StudentID:   student.ID,
		AccountID:   accountID,
		Course:      adm.Course,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish admission event", "error", err)
	}

	return adm, student, nil
}

// Get returns the admission if the caller owns it or is an admin.
func (s *service) Get(ctx context.Context, accountID int, role string, admissionID int) (*Admission, error) {
	adm, err := s.repo.GetByID(ctx, admissionID)
	if err != nil {
		return nil, err
	}
	if adm.AccountID != accountID && role != auth.RoleAdmin {
		return nil, ErrForbidden
	}
	return adm, nil
}

func (s *service) ListByAccount(ctx context.Context, accountID int) ([]Admission, error) {
	return s.repo.ListByAccount(ctx, accountID)
}

func (s *service) GetStudentByAdmission(ctx context.Context, admissionID int) (*Student, error) {
	return s.repo.GetStudentByAdmission(ctx, admissionID)
}
