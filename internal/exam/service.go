package exam

import (
	"context"
	"errors"
	"log/slog"

	"campus-linker/internal/admission"
	"campus-linker/internal/auth"
	"campus-linker/internal/course"
	"campus-linker/internal/events"
)

var ErrForbidden = errors.New("student does not belong to account")

type Service interface {
	ListAvailableExams(ctx context.Context, accountID int, role string, studentID int) ([]Group, error)
	SubmitExamForm(ctx context.Context, accountID int, role string, studentID, examID int) (*Result, error)
	ListResults(ctx context.Context, accountID int, role string, studentID int) ([]Result, error)
	CreateExam(ctx context.Context, req CreateExamRequest) (*Exam, error)
	UpdateResult(ctx context.Context, resultID int, req UpdateResultRequest) (*Result, error)
}

type service struct {
	repo      Repository
	students  admission.Repository
	courses   course.Repository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, students admission.Repository, courses course.Repository, publisher events.Publisher, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		students:  students,
		courses:   courses,
		publisher: publisher,
		logger:    logger,
	}
}

type examRegisteredEvent struct {
	ResultID  int    `json:"resultId"`
	StudentID int    `json:"studentId"`
	ExamID    int    `json:"examId"`
	Course    string `json:"courseName"`
}

type resultGradedEvent struct {
	ResultID  int    `json:"resultId"`
	StudentID int    `json:"studentId"`
	ExamID    int    `json:"examId"`
	Status    string `json:"status"`
}

// ListAvailableExams returns the sittings for the student's course, grouped
// by exam name. A student whose course is not in the catalog falls back to
// the full exam list; a known course with nothing scheduled stays empty.
func (s *service) ListAvailableExams(ctx context.Context, accountID int, role string, studentID int) ([]Group, error) {
	student, err := s.ownedStudent(ctx, accountID, role, studentID)
	if err != nil {
		return nil, err
	}

	exams, err := s.repo.ListByCourse(ctx, student.Course)
	if err != nil {
		return nil, err
	}
	if len(exams) == 0 {
		_, err := s.courses.GetCourseByName(ctx, student.Course)
		switch {
		case errors.Is(err, course.ErrCourseNotFound):
			if exams, err = s.repo.ListAll(ctx); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		}
	}

	return groupByName(exams), nil
}

// SubmitExamForm registers the student for one exam by creating the Pending
// result row. Duplicate submissions surface as ErrAlreadySubmitted.
func (s *service) SubmitExamForm(ctx context.Context, accountID int, role string, studentID, examID int) (*Result, error) {
	student, err := s.ownedStudent(ctx, accountID, role, studentID)
	if err != nil {
		return nil, err
	}

	exam, err := s.repo.GetExamByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	result := &Result{
		StudentID:  student.ID,
		ExamID:     exam.ID,
		Course:     exam.Course,
		Subject:    exam.Subject,
		TotalMarks: exam.MaxMarks,
		ExamType:   exam.Type,
		Status:     ResultStatusPending,
	}

	result, err = s.repo.CreateResult(ctx, result)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.ExamRegistered, examRegisteredEvent{
		ResultID:  result.ID,
		StudentID: student.ID,
		ExamID:    exam.ID,
		Course:    exam.Course,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish exam event", "error", err)
	}

	return result, nil
}

func (s *service) ListResults(ctx context.Context, accountID int, role string, studentID int) ([]Result, error) {
	if _, err := s.ownedStudent(ctx, accountID, role, studentID); err != nil {
		return nil, err
	}
	return s.repo.ListResultsByStudent(ctx, studentID)
}

func (s *service) CreateExam(ctx context.Context, req CreateExamRequest) (*Exam, error) {
	return s.repo.CreateExam(ctx, &Exam{
		ExamName:     req.ExamName,
		Subject:      req.Subject,
		Type:         req.Type,
		Course:       req.Course,
		ExamDate:     req.ExamDate,
		ExamTime:     req.ExamTime,
		Duration:     req.Duration,
		MaxMarks:     req.MaxMarks,
		Instructions: req.Instructions,
	})
}

// UpdateResult overwrites the graded fields of a result in place.
func (s *service) UpdateResult(ctx context.Context, resultID int, req UpdateResultRequest) (*Result, error) {
	result, err := s.repo.GetResultByID(ctx, resultID)
	if err != nil {
		return nil, err
	}

	result.ObtainMarks = req.ObtainMarks
	result.Grade = req.Grade
	result.CGPA = req.CGPA
	result.Status = req.Status

	result, err = s.repo.UpdateResult(ctx, result)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.ResultGraded, resultGradedEvent{
		ResultID:  result.ID,
		StudentID: result.StudentID,
		ExamID:    result.ExamID,
		Status:    result.Status,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish result event", "error", err)
	}

	return result, nil
}

// ownedStudent resolves the student and verifies the caller owns the parent
// admission, or is an admin.
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

func groupByName(exams []Exam) []Group {
	groups := make([]Group, 0)
	index := make(map[string]int)
	for _, exam := range exams {
		i, ok := index[exam.ExamName]
		if !ok {
			index[exam.ExamName] = len(groups)
			groups = append(groups, Group{ExamName: exam.ExamName})
			i = len(groups) - 1
		}
		groups[i].Sittings = append(groups[i].Sittings, exam)
	}
	return groups
}
