package activity

import (
	"context"
	"errors"

	"campus-linker/internal/admission"
	"campus-linker/internal/auth"
)

var ErrForbidden = errors.New("student does not belong to account")

type Service interface {
	Log(ctx context.Context, accountID int, role string, studentID int, req CreateRequest) (*Activity, error)
	ListByStudent(ctx context.Context, accountID int, role string, studentID int) ([]Activity, error)
}

type service struct {
	repo     Repository
	students admission.Repository
}

func NewService(repo Repository, students admission.Repository) Service {
	return &service{
		repo:     repo,
		students: students,
	}
}

// Log records an activity for the student, carrying the student's course on
// the row as the intake flow does.
func (s *service) Log(ctx context.Context, accountID int, role string, studentID int, req CreateRequest) (*Activity, error) {
	student, err := s.ownedStudent(ctx, accountID, role, studentID)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &Activity{
		StudentID:   student.ID,
		Course:      student.Course,
		Category:    req.Category,
		Date:        req.Date,
		Description: req.Description,
	})
}

func (s *service) ListByStudent(ctx context.Context, accountID int, role string, studentID int) ([]Activity, error) {
	if _, err := s.ownedStudent(ctx, accountID, role, studentID); err != nil {
		return nil, err
	}
	return s.repo.ListByStudent(ctx, studentID)
}

func (s *service) ownedStudent(ctx context.Context, accountID int, role string, studentID int) (*admission.Student, error) {
	student, err := s.students.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if role != auth.RoleAdmin {
		adm, err := s.students.GetByID(ctx, student.AdmissionID)
		if err != nil {
			return nil, err
		}
		if adm.AccountID != accountID {
			return nil, ErrForbidden
		}
	}
	return student, nil
}
