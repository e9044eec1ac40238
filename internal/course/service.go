package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrFeeNotConfigured means neither a course-specific nor a GENERIC amount
// exists for a category. It is deliberately distinct from a storage failure:
// a misconfigured fee table must never be read as "this course is free".
var ErrFeeNotConfigured = errors.New("fee not configured")

type Service interface {
	ListCourses(ctx context.Context) ([]Course, error)
	GetCourseByName(ctx context.Context, name string) (*Course, error)
	CreateCourse(ctx context.Context, course *Course) (*Course, error)
	CreateFee(ctx context.Context, fee *CourseFee) (*CourseFee, error)
	ResolveFee(ctx context.Context, courseName, category string) (float64, error)
	ComputeTotal(ctx context.Context, courseName string) (float64, []CategoryAmount, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

func (s *service) ListCourses(ctx context.Context) ([]Course, error) {
	return s.repo.ListCourses(ctx)
}

func (s *service) GetCourseByName(ctx context.Context, name string) (*Course, error) {
	return s.repo.GetCourseByName(ctx, name)
}

func (s *service) CreateCourse(ctx context.Context, course *Course) (*Course, error) {
	return s.repo.CreateCourse(ctx, course)
}

func (s *service) CreateFee(ctx context.Context, fee *CourseFee) (*CourseFee, error) {
	return s.repo.CreateFee(ctx, fee)
}

// ResolveFee looks up the amount for (course, category), falling back to the
// GENERIC wildcard course. Returns ErrFeeNotConfigured when neither exists.
func (s *service) ResolveFee(ctx context.Context, courseName, category string) (float64, error) {
	fee, err := s.repo.FindFee(ctx, courseName, category)
	if err == nil {
		return fee.Amount, nil
	}
	if !errors.Is(err, ErrFeeNotFound) {
		return 0, err
	}

	fee, err = s.repo.FindFee(ctx, GenericCourse, category)
	if err == nil {
		return fee.Amount, nil
	}
	if !errors.Is(err, ErrFeeNotFound) {
		return 0, err
	}

	return 0, fmt.Errorf("%w: course %q category %q", ErrFeeNotConfigured, courseName, category)
}

// ComputeTotal sums ResolveFee over the fixed category set. Categories with
// no configured amount contribute 0 to the total but are logged as a
// configuration gap; storage failures abort the computation.
func (s *service) ComputeTotal(ctx context.Context, courseName string) (float64, []CategoryAmount, error) {
	var total float64
	breakdown := make([]CategoryAmount, 0, len(FeeCategories))

	for _, category := range FeeCategories {
		amount, err := s.ResolveFee(ctx, courseName, category)
		if err != nil {
			if errors.Is(err, ErrFeeNotConfigured) {
				s.logger.WarnContext(ctx, "fee category not configured",
					"course", courseName, "category", category)
				continue
			}
			return 0, nil, err
		}
		total += amount
		breakdown = append(breakdown, CategoryAmount{Category: category, Amount: amount})
	}

	return total, breakdown, nil
}
