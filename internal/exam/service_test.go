package exam_test

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"

	"campus-linker/internal/admission"
	"campus-linker/internal/auth"
	"campus-linker/internal/course"
	"campus-linker/internal/events"
	"campus-linker/internal/exam"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExamRepository struct {
	mu      sync.Mutex
	exams   map[int]exam.Exam
	results map[int]exam.Result
	nextID  int
}

func newFakeExamRepository() *fakeExamRepository {
	return &fakeExamRepository{
		exams:   make(map[int]exam.Exam),
		results: make(map[int]exam.Result),
		nextID:  1,
	}
}

func (f *fakeExamRepository) addExam(e exam.Exam) exam.Exam {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = f.nextID
	f.nextID++
	f.exams[e.ID] = e
	return e
}

func (f *fakeExamRepository) CreateExam(ctx context.Context, e *exam.Exam) (*exam.Exam, error) {
	created := f.addExam(*e)
	return &created, nil
}

func (f *fakeExamRepository) GetExamByID(ctx context.Context, id int) (*exam.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exams[id]
	if !ok {
		return nil, exam.ErrExamNotFound
	}
	return &e, nil
}

func (f *fakeExamRepository) ListByCourse(ctx context.Context, courseName string) ([]exam.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []exam.Exam
	for _, e := range f.exams {
		if strings.EqualFold(e.Course, courseName) {
			out = append(out, e)
		}
	}
	sortExams(out)
	return out, nil
}

func (f *fakeExamRepository) ListAll(ctx context.Context) ([]exam.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []exam.Exam
	for _, e := range f.exams {
		out = append(out, e)
	}
	sortExams(out)
	return out, nil
}

func sortExams(exams []exam.Exam) {
	sort.Slice(exams, func(i, j int) bool {
		if exams[i].ExamName != exams[j].ExamName {
			return exams[i].ExamName < exams[j].ExamName
		}
		return exams[i].ExamDate < exams[j].ExamDate
	})
}

// CreateResult mirrors the unique index on (student_id, exam_id).
func (f *fakeExamRepository) CreateResult(ctx context.Context, r *exam.Result) (*exam.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.results {
		if existing.StudentID == r.StudentID && existing.ExamID == r.ExamID {
			return nil, exam.ErrAlreadySubmitted
		}
	}
	r.ID = f.nextID
	f.nextID++
	f.results[r.ID] = *r
	return r, nil
}

func (f *fakeExamRepository) GetResultByID(ctx context.Context, id int) (*exam.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.results[id]
	if !ok {
		return nil, exam.ErrResultNotFound
	}
	return &r, nil
}

func (f *fakeExamRepository) ListResultsByStudent(ctx context.Context, studentID int) ([]exam.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []exam.Result
	for _, r := range f.results {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeExamRepository) UpdateResult(ctx context.Context, r *exam.Result) (*exam.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.results[r.ID]; !ok {
		return nil, exam.ErrResultNotFound
	}
	f.results[r.ID] = *r
	return r, nil
}

type fakeStudentRepository struct {
	admissions map[int]admission.Admission
	students   map[int]admission.Student
}

func (f *fakeStudentRepository) CreateWithStudent(ctx context.Context, adm *admission.Admission) (*admission.Admission, *admission.Student, error) {
	return nil, nil, nil
}

func (f *fakeStudentRepository) GetByID(ctx context.Context, id int) (*admission.Admission, error) {
	adm, ok := f.admissions[id]
	if !ok {
		return nil, admission.ErrAdmissionNotFound
	}
	return &adm, nil
}

func (f *fakeStudentRepository) ListByAccount(ctx context.Context, accountID int) ([]admission.Admission, error) {
	return nil, nil
}

func (f *fakeStudentRepository) GetStudentByAdmission(ctx context.Context, admissionID int) (*admission.Student, error) {
	return nil, admission.ErrStudentNotFound
}

func (f *fakeStudentRepository) GetStudentByID(ctx context.Context, id int) (*admission.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return nil, admission.ErrStudentNotFound
	}
	return &student, nil
}

func mscStudent(studentID, admissionID, accountID int) *fakeStudentRepository {
	return &fakeStudentRepository{
		admissions: map[int]admission.Admission{
			admissionID: {ID: admissionID, AccountID: accountID, Course: "M.Sc"},
		},
		students: map[int]admission.Student{
			studentID: {ID: studentID, AdmissionID: admissionID, Name: "Asha Verma", Course: "M.Sc"},
		},
	}
}

type fakeCourseRepository struct {
	names []string
}

func (f *fakeCourseRepository) ListCourses(ctx context.Context) ([]course.Course, error) {
	return nil, nil
}

func (f *fakeCourseRepository) GetCourseByName(ctx context.Context, name string) (*course.Course, error) {
	for _, n := range f.names {
		if strings.EqualFold(n, name) {
			return &course.Course{Name: n}, nil
		}
	}
	return nil, course.ErrCourseNotFound
}

func (f *fakeCourseRepository) CreateCourse(ctx context.Context, c *course.Course) (*course.Course, error) {
	return c, nil
}

func (f *fakeCourseRepository) FindFee(ctx context.Context, courseName, category string) (*course.CourseFee, error) {
	return nil, course.ErrFeeNotFound
}

func (f *fakeCourseRepository) CreateFee(ctx context.Context, fee *course.CourseFee) (*course.CourseFee, error) {
	return fee, nil
}

func newTestService(repo exam.Repository, students admission.Repository) exam.Service {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	catalog := &fakeCourseRepository{names: []string{"M.Sc", "B.Com", "BBA"}}
	return exam.NewService(repo, students, catalog, events.Nop{}, logger)
}

func TestListAvailableExams(t *testing.T) {
	ctx := context.Background()

	t.Run("scoped to course and grouped by name", func(t *testing.T) {
		repo := newFakeExamRepository()
		repo.addExam(exam.Exam{ExamName: "Midterm Exam 2025", Subject: "Physics", Course: "M.Sc", ExamDate: "2025-03-17", MaxMarks: 100})
		repo.addExam(exam.Exam{ExamName: "Midterm Exam 2025", Subject: "Chemistry", Course: "M.Sc", ExamDate: "2025-03-18", MaxMarks: 100})
		repo.addExam(exam.Exam{ExamName: "Final Exam 2025", Subject: "Advanced Mathematics", Course: "M.Sc", ExamDate: "2025-05-21", MaxMarks: 100})
		repo.addExam(exam.Exam{ExamName: "Midterm Exam 2025", Subject: "Accounting", Course: "B.Com", ExamDate: "2025-03-16", MaxMarks: 100})
		svc := newTestService(repo, mscStudent(10, 1, 7))

		groups, err := svc.ListAvailableExams(ctx, 7, auth.RoleStudent, 10)
		require.NoError(t, err)

		require.Len(t, groups, 2)
		assert.Equal(t, "Final Exam 2025", groups[0].ExamName)
		assert.Len(t, groups[0].Sittings, 1)
		assert.Equal(t, "Midterm Exam 2025", groups[1].ExamName)
		require.Len(t, groups[1].Sittings, 2)
		assert.Equal(t, "Physics", groups[1].Sittings[0].Subject)
		assert.Equal(t, "Chemistry", groups[1].Sittings[1].Subject)
	})

	t.Run("unknown course falls back to all exams", func(t *testing.T) {
		repo := newFakeExamRepository()
		repo.addExam(exam.Exam{ExamName: "Midterm Exam 2025", Subject: "Accounting", Course: "B.Com", ExamDate: "2025-03-16", MaxMarks: 100})
		students := &fakeStudentRepository{
			admissions: map[int]admission.Admission{1: {ID: 1, AccountID: 7, Course: "Astrology"}},
			students:   map[int]admission.Student{10: {ID: 10, AdmissionID: 1, Course: "Astrology"}},
		}
		svc := newTestService(repo, students)

		groups, err := svc.ListAvailableExams(ctx, 7, auth.RoleStudent, 10)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "Accounting", groups[0].Sittings[0].Subject)
	})

	t.Run("known course without sittings stays empty", func(t *testing.T) {
		repo := newFakeExamRepository()
		repo.addExam(exam.Exam{ExamName: "Midterm Exam 2025", Subject: "Accounting", Course: "B.Com", ExamDate: "2025-03-16", MaxMarks: 100})
		students := &fakeStudentRepository{
			admissions: map[int]admission.Admission{1: {ID: 1, AccountID: 7, Course: "BBA"}},
			students:   map[int]admission.Student{10: {ID: 10, AdmissionID: 1, Course: "BBA"}},
		}
		svc := newTestService(repo, students)

		groups, err := svc.ListAvailableExams(ctx, 7, auth.RoleStudent, 10)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("foreign student forbidden", func(t *testing.T) {
		svc := newTestService(newFakeExamRepository(), mscStudent(10, 1, 7))

		_, err := svc.ListAvailableExams(ctx, 8, auth.RoleStudent, 10)
		assert.ErrorIs(t, err, exam.ErrForbidden)
	})
}

func TestSubmitExamForm(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending result from exam", func(t *testing.T) {
		repo := newFakeExamRepository()
		sitting := repo.addExam(exam.Exam{ExamName: "Midterm Exam 2025", Subject: "Physics", Type: "Midterm", Course: "M.Sc", ExamDate: "2025-03-17", MaxMarks: 100})
		svc := newTestService(repo, mscStudent(10, 1, 7))

		result, err := svc.SubmitExamForm(ctx, 7, auth.RoleStudent, 10, sitting.ID)
		require.NoError(t, err)

		assert.Equal(t, 10, result.StudentID)
		assert.Equal(t, sitting.ID, result.ExamID)
		assert.Equal(t, "M.Sc", result.Course)
		assert.Equal(t, "Physics", result.Subject)
		assert.Equal(t, 0, result.ObtainMarks)
		assert.Equal(t, 100, result.TotalMarks)
		assert.Empty(t, result.Grade)
		assert.Nil(t, result.CGPA)
		assert.Equal(t, exam.ResultStatusPending, result.Status)
	})

	t.Run("missing exam", func(t *testing.T) {
		svc := newTestService(newFakeExamRepository(), mscStudent(10, 1, 7))

		_, err := svc.SubmitExamForm(ctx, 7, auth.RoleStudent, 10, 4242)
		assert.ErrorIs(t, err, exam.ErrExamNotFound)
	})

	t.Run("foreign student forbidden", func(t *testing.T) {
		repo := newFakeExamRepository()
		sitting := repo.addExam(exam.Exam{ExamName: "Midterm Exam 2025", Subject: "Physics", Course: "M.Sc", ExamDate: "2025-03-17", MaxMarks: 100})
		svc := newTestService(repo, mscStudent(10, 1, 7))

		_, err := svc.SubmitExamForm(ctx, 8, auth.RoleStudent, 10, sitting.ID)
		assert.ErrorIs(t, err, exam.ErrForbidden)
	})

	t.Run("duplicate submission conflicts", func(t *testing.T) {
		repo := newFakeExamRepository()
		sitting := repo.addExam(exam.Exam{ExamName: "Midterm Exam 2025", Subject: "Physics", Course: "M.Sc", ExamDate: "2025-03-17", MaxMarks: 100})
		svc := newTestService(repo, mscStudent(10, 1, 7))

		_, err := svc.SubmitExamForm(ctx, 7, auth.RoleStudent, 10, sitting.ID)
		require.NoError(t, err)

		_, err = svc.SubmitExamForm(ctx, 7, auth.RoleStudent, 10, sitting.ID)
		assert.ErrorIs(t, err, exam.ErrAlreadySubmitted)
	})

	t.Run("concurrent submissions produce one result", func(t *testing.T) {
		repo := newFakeExamRepository()
		sitting := repo.addExam(exam.Exam{ExamName: "Midterm Exam 2025", Subject: "Physics", Course: "M.Sc", ExamDate: "2025-03-17", MaxMarks: 100})
		svc := newTestService(repo, mscStudent(10, 1, 7))

		const attempts = 8
		errs := make(chan error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.SubmitExamForm(ctx, 7, auth.RoleStudent, 10, sitting.ID)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var successes int
		for err := range errs {
			if err == nil {
				successes++
			} else {
				require.ErrorIs(t, err, exam.ErrAlreadySubmitted)
			}
		}
		assert.Equal(t, 1, successes)

		results, err := svc.ListResults(ctx, 7, auth.RoleStudent, 10)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}

func TestUpdateResult(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites graded fields", func(t *testing.T) {
		repo := newFakeExamRepository()
		sitting := repo.addExam(exam.Exam{ExamName: "Midterm Exam 2025", Subject: "Physics", Course: "M.Sc", ExamDate: "2025-03-17", MaxMarks: 100})
		svc := newTestService(repo, mscStudent(10, 1, 7))

		created, err := svc.SubmitExamForm(ctx, 7, auth.RoleStudent, 10, sitting.ID)
		require.NoError(t, err)

		cgpa := 8.4
		updated, err := svc.UpdateResult(ctx, created.ID, exam.UpdateResultRequest{
			ObtainMarks: 82,
			Grade:       "A",
			CGPA:        &cgpa,
			Status:      exam.ResultStatusPassed,
		})
		require.NoError(t, err)

		assert.Equal(t, 82, updated.ObtainMarks)
		assert.Equal(t, "A", updated.Grade)
		require.NotNil(t, updated.CGPA)
		assert.Equal(t, 8.4, *updated.CGPA)
		assert.Equal(t, exam.ResultStatusPassed, updated.Status)
	})

	t.Run("missing result", func(t *testing.T) {
		svc := newTestService(newFakeExamRepository(), mscStudent(10, 1, 7))

		_, err := svc.UpdateResult(ctx, 4242, exam.UpdateResultRequest{Grade: "A", Status: exam.ResultStatusPassed})
		assert.ErrorIs(t, err, exam.ErrResultNotFound)
	})
}
