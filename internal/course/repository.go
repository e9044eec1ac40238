package course

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campus-linker/internal/metrics"

	"github.com/uptrace/bun"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrFeeNotFound    = errors.New("course fee not found")
)

type Repository interface {
	ListCourses(ctx context.Context) ([]Course, error)
	GetCourseByName(ctx context.Context, name string) (*Course, error)
	CreateCourse(ctx context.Context, course *Course) (*Course, error)
	FindFee(ctx context.Context, courseName, category string) (*CourseFee, error)
	CreateFee(ctx context.Context, fee *CourseFee) (*CourseFee, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) ListCourses(ctx context.Context) ([]Course, error) {
	start := time.Now()
	var courses []Course
	err := r.db.NewSelect().Model(&courses).Order("name ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "courses", time.Since(start), err)

	return courses, err
}

func (r *repository) GetCourseByName(ctx context.Context, name string) (*Course, error) {
	start := time.Now()
	course := new(Course)
	err := r.db.NewSelect().Model(course).Where("LOWER(name) = LOWER(?)", name).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "courses", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (r *repository) CreateCourse(ctx context.Context, course *Course) (*Course, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(course).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "courses", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return course, nil
}

// FindFee does a case-insensitive exact match on (course, category).
func (r *repository) FindFee(ctx context.Context, courseName, category string) (*CourseFee, error) {
	start := time.Now()
	fee := new(CourseFee)
	err := r.db.NewSelect().
		Model(fee).
		Where("LOWER(course_name) = LOWER(?)", courseName).
		Where("LOWER(category) = LOWER(?)", category).
		Limit(1).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "course_fees", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFeeNotFound
		}
		return nil, err
	}
	return fee, nil
}

func (r *repository) CreateFee(ctx context.Context, fee *CourseFee) (*CourseFee, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(fee).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "course_fees", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return fee, nil
}
