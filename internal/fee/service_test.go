package fee_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"campus-linker/internal/admission"
	"campus-linker/internal/auth"
	"campus-linker/internal/course"
	"campus-linker/internal/events"
	"campus-linker/internal/fee"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeeRepository struct {
	mu        sync.Mutex
	completed map[int]fee.Fee
	nextID    int
}

func newFakeFeeRepository() *fakeFeeRepository {
	return &fakeFeeRepository{
		completed: make(map[int]fee.Fee),
		nextID:    1,
	}
}

func (f *fakeFeeRepository) GetCompletedByAdmission(ctx context.Context, admissionID int) (*fee.Fee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.completed[admissionID]
	if !ok {
		return nil, fee.ErrPaymentNotFound
	}
	return &payment, nil
}

// CreatePayment mirrors the partial unique index: at most one completed row
// per admission, whichever call wins the lock.
func (f *fakeFeeRepository) CreatePayment(ctx context.Context, payment *fee.Fee) (*fee.Fee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.completed[payment.AdmissionID]; ok {
		return nil, fee.ErrAlreadyPaid
	}
	payment.ID = f.nextID
	f.nextID++
	f.completed[payment.AdmissionID] = *payment
	return payment, nil
}

type fakeAdmissionRepository struct {
	admissions map[int]admission.Admission
}

func (f *fakeAdmissionRepository) CreateWithStudent(ctx context.Context, adm *admission.Admission) (*admission.Admission, *admission.Student, error) {
	return nil, nil, nil
}

func (f *fakeAdmissionRepository) GetByID(ctx context.Context, id int) (*admission.Admission, error) {
	adm, ok := f.admissions[id]
	if !ok {
		return nil, admission.ErrAdmissionNotFound
	}
	return &adm, nil
}

func (f *fakeAdmissionRepository) ListByAccount(ctx context.Context, accountID int) ([]admission.Admission, error) {
	return nil, nil
}

func (f *fakeAdmissionRepository) GetStudentByAdmission(ctx context.Context, admissionID int) (*admission.Student, error) {
	return nil, admission.ErrStudentNotFound
}

func (f *fakeAdmissionRepository) GetStudentByID(ctx context.Context, id int) (*admission.Student, error) {
	return nil, admission.ErrStudentNotFound
}

// fakeCourseRepository backs a real course.Service so the fee workflow
// exercises the actual resolver.
type fakeCourseRepository struct {
	fees map[string]float64
}

func (f *fakeCourseRepository) ListCourses(ctx context.Context) ([]course.Course, error) {
	return nil, nil
}

func (f *fakeCourseRepository) GetCourseByName(ctx context.Context, name string) (*course.Course, error) {
	return nil, course.ErrCourseNotFound
}

func (f *fakeCourseRepository) CreateCourse(ctx context.Context, c *course.Course) (*course.Course, error) {
	return c, nil
}

func (f *fakeCourseRepository) FindFee(ctx context.Context, courseName, category string) (*course.CourseFee, error) {
	amount, ok := f.fees[courseName+"|"+category]
	if !ok {
		return nil, course.ErrFeeNotFound
	}
	return &course.CourseFee{CourseName: courseName, Category: category, Amount: amount}, nil
}

func (f *fakeCourseRepository) CreateFee(ctx context.Context, cf *course.CourseFee) (*course.CourseFee, error) {
	return cf, nil
}

func newTestService(t *testing.T, repo fee.Repository, courseFees map[string]float64, admissions map[int]admission.Admission) fee.Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	courses := course.NewService(&fakeCourseRepository{fees: courseFees}, logger)
	return fee.NewService(repo, &fakeAdmissionRepository{admissions: admissions}, courses, events.Nop{}, logger)
}

func mscFees() map[string]float64 {
	return map[string]float64{
		"M.Sc|Admission Fee": 5000,
		"M.Sc|Tuition Fee":   22000,
		"M.Sc|Exam Fee":      1500,
		"M.Sc|Library Fee":   500,
		"M.Sc|Hostel Fee":    15000,
		"M.Sc|Other Fee":     0,
	}
}

func mscAdmission(id, accountID int) map[int]admission.Admission {
	return map[int]admission.Admission{
		id: {ID: id, AccountID: accountID, Name: "Asha Verma", Course: "M.Sc", Status: admission.StatusSubmitted},
	}
}

func TestPay(t *testing.T) {
	ctx := context.Background()

	t.Run("first payment succeeds", func(t *testing.T) {
		svc := newTestService(t, newFakeFeeRepository(), mscFees(), mscAdmission(1, 7))

		payment, err := svc.Pay(ctx, 7, auth.RoleStudent, 1, "UPI")
		require.NoError(t, err)
		assert.Equal(t, fee.StatusCompleted, payment.Status)
		assert.Equal(t, 44000.0, payment.Amount)
		assert.Equal(t, 44000.0, payment.TotalFee)
		assert.NotNil(t, payment.PaymentDate)
	})

	t.Run("second payment conflicts", func(t *testing.T) {
		svc := newTestService(t, newFakeFeeRepository(), mscFees(), mscAdmission(1, 7))

		_, err := svc.Pay(ctx, 7, auth.RoleStudent, 1, "UPI")
		require.NoError(t, err)

		_, err = svc.Pay(ctx, 7, auth.RoleStudent, 1, "Card")
		assert.ErrorIs(t, err, fee.ErrAlreadyPaid)
	})

	t.Run("concurrent payments produce one success", func(t *testing.T) {
		svc := newTestService(t, newFakeFeeRepository(), mscFees(), mscAdmission(1, 7))

		const attempts = 8
		errs := make(chan error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Pay(ctx, 7, auth.RoleStudent, 1, "UPI")
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var successes, conflicts int
		for err := range errs {
			switch {
			case err == nil:
				successes++
			default:
				require.ErrorIs(t, err, fee.ErrAlreadyPaid)
				conflicts++
			}
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, attempts-1, conflicts)
	})

	t.Run("unconfigured course is unavailable", func(t *testing.T) {
		admissions := map[int]admission.Admission{
			1: {ID: 1, AccountID: 7, Name: "Asha Verma", Course: "Astrology", Status: admission.StatusSubmitted},
		}
		svc := newTestService(t, newFakeFeeRepository(), map[string]float64{}, admissions)

		_, err := svc.Pay(ctx, 7, auth.RoleStudent, 1, "UPI")
		assert.ErrorIs(t, err, fee.ErrFeeUnavailable)
	})

	t.Run("foreign admission forbidden", func(t *testing.T) {
		svc := newTestService(t, newFakeFeeRepository(), mscFees(), mscAdmission(1, 7))

		_, err := svc.Pay(ctx, 8, auth.RoleStudent, 1, "UPI")
		assert.ErrorIs(t, err, fee.ErrForbidden)
	})
}

func TestGetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("unpaid admission", func(t *testing.T) {
		svc := newTestService(t, newFakeFeeRepository(), mscFees(), mscAdmission(1, 7))

		status, err := svc.GetStatus(ctx, 7, auth.RoleStudent, 1)
		require.NoError(t, err)
		assert.Equal(t, 44000.0, status.TotalDue)
		assert.False(t, status.Paid)
		assert.Nil(t, status.Payment)
		assert.Len(t, status.Breakdown, 6)
	})

	t.Run("paid admission includes payment", func(t *testing.T) {
		svc := newTestService(t, newFakeFeeRepository(), mscFees(), mscAdmission(1, 7))

		_, err := svc.Pay(ctx, 7, auth.RoleStudent, 1, "UPI")
		require.NoError(t, err)

		status, err := svc.GetStatus(ctx, 7, auth.RoleStudent, 1)
		require.NoError(t, err)
		assert.True(t, status.Paid)
		require.NotNil(t, status.Payment)
		assert.Equal(t, "UPI", status.Payment.PaymentMethod)
	})

	t.Run("missing admission", func(t *testing.T) {
		svc := newTestService(t, newFakeFeeRepository(), mscFees(), mscAdmission(1, 7))

		_, err := svc.GetStatus(ctx, 7, auth.RoleStudent, 99)
		assert.ErrorIs(t, err, admission.ErrAdmissionNotFound)
	})
}
