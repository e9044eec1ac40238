package dashboard

import (
	"context"
	"time"

	"campus-linker/internal/admission"
	"campus-linker/internal/exam"
	"campus-linker/internal/fee"
	"campus-linker/internal/metrics"

	"github.com/uptrace/bun"
)

// StatusCount is one row of a grouped count, keyed by status or course name.
type StatusCount struct {
	Key   string `bun:"key" json:"key"`
	Count int    `bun:"count" json:"count"`
}

// Summary is the admin dashboard payload.
type Summary struct {
	AdmissionsByStatus []StatusCount `json:"admissionsByStatus"`
	StudentsPerCourse  []StatusCount `json:"studentsPerCourse"`
	FeesCollected      float64       `json:"feesCollected"`
	PaymentsCount      int           `json:"paymentsCount"`
	ResultsPending     int           `json:"resultsPending"`
	ResultsGraded      int           `json:"resultsGraded"`
}

type Repository interface {
	Summary(ctx context.Context) (*Summary, error)
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

func (r *repository) Summary(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary, err := r.summary(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "dashboard", time.Since(start), err)
	return summary, err
}

func (r *repository) summary(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		AdmissionsByStatus: []StatusCount{},
		StudentsPerCourse:  []StatusCount{},
	}

	err := r.db.NewSelect().
		Model((*admission.Admission)(nil)).
		ColumnExpr("status AS key").
		ColumnExpr("count(*) AS count").
		Group("status").
		Order("status ASC").
		Scan(ctx, &summary.AdmissionsByStatus)
	if err != nil {
		return nil, err
	}

	err = r.db.NewSelect().
		Model((*admission.Student)(nil)).
		ColumnExpr("course_name AS key").
		ColumnExpr("count(*) AS count").
		Group("course_name").
		Order("course_name ASC").
		Scan(ctx, &summary.StudentsPerCourse)
	if err != nil {
		return nil, err
	}

	err = r.db.NewSelect().
		Model((*fee.Fee)(nil)).
		ColumnExpr("coalesce(sum(amount), 0)").
		Where("status = ?", fee.StatusCompleted).
		Scan(ctx, &summary.FeesCollected)
	if err != nil {
		return nil, err
	}

	summary.PaymentsCount, err = r.db.NewSelect().
		Model((*fee.Fee)(nil)).
		Where("status = ?", fee.StatusCompleted).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	summary.ResultsPending, err = r.db.NewSelect().
		Model((*exam.Result)(nil)).
		Where("status = ?", exam.ResultStatusPending).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	summary.ResultsGraded, err = r.db.NewSelect().
		Model((*exam.Result)(nil)).
		Where("status != ?", exam.ResultStatusPending).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	return summary, nil
}
