package fee

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campus-linker/internal/admission"
	"campus-linker/internal/db"
	"campus-linker/internal/metrics"

	"github.com/uptrace/bun"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrAlreadyPaid     = errors.New("fee already paid for this admission")
)

type Repository interface {
	GetCompletedByAdmission(ctx context.Context, admissionID int) (*Fee, error)
	CreatePayment(ctx context.Context, payment *Fee) (*Fee, error)
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

func (r *repository) GetCompletedByAdmission(ctx context.Context, admissionID int) (*Fee, error) {
	start := time.Now()
	payment := new(Fee)
	err := r.db.NewSelect().
		Model(payment).
		Where("admission_id = ?", admissionID).
		Where("status = ?", StatusCompleted).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "fees", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// CreatePayment inserts the completed fee row and flips the parent admission
// to Completed in one transaction. A second concurrent attempt trips the
// partial unique index and comes back as ErrAlreadyPaid.
func (r *repository) CreatePayment(ctx context.Context, payment *Fee) (*Fee, error) {
	start := time.Now()

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(payment).Returning("*").Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewUpdate().
			Model((*admission.Admission)(nil)).
			Set("status = ?", admission.StatusCompleted).
			Where("id = ?", payment.AdmissionID).
			Exec(ctx)
		return err
	})

	r.metrics.Database.RecordQuery(ctx, "insert", "fees", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyPaid
		}
		return nil, err
	}
	return payment, nil
}
