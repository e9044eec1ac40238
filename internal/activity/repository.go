package activity

import (
	"context"
	"time"

	"campus-linker/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, activity *Activity) (*Activity, error)
	ListByStudent(ctx context.Context, studentID int) ([]Activity, error)
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

func (r *repository) Create(ctx context.Context, activity *Activity) (*Activity, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(activity).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "social_activities", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return activity, nil
}

func (r *repository) ListByStudent(ctx context.Context, studentID int) ([]Activity, error) {
	start := time.Now()
	var activities []Activity
	err := r.db.NewSelect().
		Model(&activities).
		Where("student_id = ?", studentID).
		Order("activity_date DESC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "social_activities", time.Since(start), err)

	return activities, err
}
