package admission

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campus-linker/internal/metrics"

	"github.com/uptrace/bun"
)

var (
	ErrAdmissionNotFound = errors.New("admission not found")
	ErrStudentNotFound   = errors.New("student not found")
)

type Repository interface {
	CreateWithStudent(ctx context.Context, adm *Admission) (*Admission, *Student, error)
	GetByID(ctx context.Context, id int) (*Admission, error)
	ListByAccount(ctx context.Context, accountID int) ([]Admission, error)
	GetStudentByAdmission(ctx context.Context, admissionID int) (*Student, error)
	GetStudentByID(ctx context.Context, id int) (*Student, error)
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

// CreateWithStudent persists the admission and its paired student row in one
// transaction: either both exist afterwards or neither does.
func (r *repository) CreateWithStudent(ctx context.Context, adm *Admission) (*Admission, *Student, error) {
	start := time.Now()
	student := new(Student)

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(adm).Returning("*").Exec(ctx); err != nil {
			return err
		}

		student.AdmissionID = adm.ID
		student.Name = adm.Name
		student.Course = adm.Course

		_, err := tx.NewInsert().Model(student).Returning("*").Exec(ctx)
		return err
	})

	r.metrics.Database.RecordQuery(ctx, "insert", "admissions", time.Since(start), err)

	if err != nil {
		return nil, nil, err
	}
	return adm, student, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Admission, error) {
	start := time.Now()
	adm := new(Admission)
	err := r.db.NewSelect().Model(adm).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "admissions", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdmissionNotFound
		}
		return nil, err
	}
	return adm, nil
}

func (r *repository) ListByAccount(ctx context.Context, accountID int) ([]Admission, error) {
	start := time.Now()
	var admissions []Admission
	err := r.db.NewSelect().
		Model(&admissions).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "admissions", time.Since(start), err)

	return admissions, err
}

func (r *repository) GetStudentByAdmission(ctx context.Context, admissionID int) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("admission_id = ?", admissionID).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) GetStudentByID(ctx context.Context, id int) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}
