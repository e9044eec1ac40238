package exam

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campus-linker/internal/db"
	"campus-linker/internal/metrics"

	"github.com/uptrace/bun"
)

var (
	ErrExamNotFound     = errors.New("exam not found")
	ErrResultNotFound   = errors.New("result not found")
	ErrAlreadySubmitted = errors.New("exam form already submitted")
)

type Repository interface {
	CreateExam(ctx context.Context, exam *Exam) (*Exam, error)
	GetExamByID(ctx context.Context, id int) (*Exam, error)
	ListByCourse(ctx context.Context, courseName string) ([]Exam, error)
	ListAll(ctx context.Context) ([]Exam, error)
	CreateResult(ctx context.Context, result *Result) (*Result, error)
	GetResultByID(ctx context.Context, id int) (*Result, error)
	ListResultsByStudent(ctx context.Context, studentID int) ([]Result, error)
	UpdateResult(ctx context.Context, result *Result) (*Result, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(bunDB *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      bunDB,
		metrics: m,
	}
}

func (r *repository) CreateExam(ctx context.Context, exam *Exam) (*Exam, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(exam).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "exams", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return exam, nil
}

func (r *repository) GetExamByID(ctx context.Context, id int) (*Exam, error) {
	start := time.Now()
	exam := new(Exam)
	err := r.db.NewSelect().Model(exam).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "exams", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return exam, nil
}

func (r *repository) ListByCourse(ctx context.Context, courseName string) ([]Exam, error) {
	start := time.Now()
	var exams []Exam
	err := r.db.NewSelect().
		Model(&exams).
		Where("LOWER(course_name) = LOWER(?)", courseName).
		Order("exam_name ASC", "exam_date ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "exams", time.Since(start), err)

	return exams, err
}

func (r *repository) ListAll(ctx context.Context) ([]Exam, error) {
	start := time.Now()
	var exams []Exam
	err := r.db.NewSelect().
		Model(&exams).
		Order("exam_name ASC", "exam_date ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "exams", time.Since(start), err)

	return exams, err
}

// CreateResult inserts the Pending result row created at form submission.
// The unique index on (student_id, exam_id) turns a duplicate submission,
// concurrent or not, into ErrAlreadySubmitted.
func (r *repository) CreateResult(ctx context.Context, result *Result) (*Result, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(result).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "results", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadySubmitted
		}
		return nil, err
	}
	return result, nil
}

func (r *repository) GetResultByID(ctx context.Context, id int) (*Result, error) {
	start := time.Now()
	result := new(Result)
	err := r.db.NewSelect().Model(result).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "results", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return result, nil
}

func (r *repository) ListResultsByStudent(ctx context.Context, studentID int) ([]Result, error) {
	start := time.Now()
	var results []Result
	err := r.db.NewSelect().
		Model(&results).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "results", time.Since(start), err)

	return results, err
}

func (r *repository) UpdateResult(ctx context.Context, result *Result) (*Result, error) {
	start := time.Now()
	res, err := r.db.NewUpdate().
		Model(result).
		Column("obtain_marks", "grade", "cgpa", "status").
		WherePK().
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "results", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrResultNotFound
	}
	return result, nil
}
