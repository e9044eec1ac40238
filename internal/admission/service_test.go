package admission_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"campus-linker/internal/admission"
	"campus-linker/internal/auth"
	"campus-linker/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	mu         sync.Mutex
	admissions map[int]admission.Admission
	students   map[int]admission.Student
	nextID     int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		admissions: make(map[int]admission.Admission),
		students:   make(map[int]admission.Student),
		nextID:     1,
	}
}

func (f *fakeRepository) CreateWithStudent(ctx context.Context, adm *admission.Admission) (*admission.Admission, *admission.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	adm.ID = f.nextID
	f.nextID++
	f.admissions[adm.ID] = *adm

	student := admission.Student{
		ID:          f.nextID,
		AdmissionID: adm.ID,
		Name:        adm.Name,
		Course:      adm.Course,
	}
	f.nextID++
	f.students[student.ID] = student

	return adm, &student, nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id int) (*admission.Admission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	adm, ok := f.admissions[id]
	if !ok {
		return nil, admission.ErrAdmissionNotFound
	}
	return &adm, nil
}

func (f *fakeRepository) ListByAccount(ctx context.Context, accountID int) ([]admission.Admission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []admission.Admission
	for _, adm := range f.admissions {
		if adm.AccountID == accountID {
			out = append(out, adm)
		}
	}
	return out, nil
}

func (f *fakeRepository) GetStudentByAdmission(ctx context.Context, admissionID int) (*admission.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, student := range f.students {
		if student.AdmissionID == admissionID {
			return &student, nil
		}
	}
	return nil, admission.ErrStudentNotFound
}

func (f *fakeRepository) GetStudentByID(ctx context.Context, id int) (*admission.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	student, ok := f.students[id]
	if !ok {
		return nil, admission.ErrStudentNotFound
	}
	return &student, nil
}

func newTestService(repo admission.Repository) admission.Service {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return admission.NewService(repo, events.Nop{}, logger)
}

func validRequest() admission.SubmitRequest {
	return admission.SubmitRequest{
		Name:      "Asha Verma",
		Course:    "M.Sc",
		Email:     "asha@example.com",
		BirthDate: "2002-04-11",
		Father:    "R Verma",
		Mother:    "S Verma",
		MobileNo:  "9876500000",
		AadharNo:  "123412341234",
		Address:   "12 College Road",
		State:     "Maharashtra",
		District:  "Pune",
		Pincode:   "411001",
		Gender:    "Female",
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("creates admission and student together", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestService(repo)

		adm, student, err := svc.Submit(ctx, 7, validRequest())
		require.NoError(t, err)

		assert.Equal(t, admission.StatusSubmitted, adm.Status)
		assert.Equal(t, 7, adm.AccountID)
		assert.Equal(t, adm.ID, student.AdmissionID)
		assert.Equal(t, adm.Name, student.Name)
		assert.Equal(t, adm.Course, student.Course)
	})

	t.Run("student queryable immediately after submit", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestService(repo)

		adm, created, err := svc.Submit(ctx, 7, validRequest())
		require.NoError(t, err)

		student, err := svc.GetStudentByAdmission(ctx, adm.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, student.ID)
	})

	t.Run("repeat admissions allowed", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestService(repo)

		_, _, err := svc.Submit(ctx, 7, validRequest())
		require.NoError(t, err)
		_, _, err = svc.Submit(ctx, 7, validRequest())
		require.NoError(t, err)

		admissions, err := svc.ListByAccount(ctx, 7)
		require.NoError(t, err)
		assert.Len(t, admissions, 2)
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := newTestService(repo)

	adm, _, err := svc.Submit(ctx, 7, validRequest())
	require.NoError(t, err)

	t.Run("owner can read", func(t *testing.T) {
		got, err := svc.Get(ctx, 7, auth.RoleStudent, adm.ID)
		require.NoError(t, err)
		assert.Equal(t, adm.ID, got.ID)
	})

	t.Run("other account forbidden", func(t *testing.T) {
		_, err := svc.Get(ctx, 8, auth.RoleStudent, adm.ID)
		assert.ErrorIs(t, err, admission.ErrForbidden)
	})

	t.Run("admin can read any", func(t *testing.T) {
		got, err := svc.Get(ctx, 99, auth.RoleAdmin, adm.ID)
		require.NoError(t, err)
		assert.Equal(t, adm.ID, got.ID)
	})

	t.Run("missing admission", func(t *testing.T) {
		_, err := svc.Get(ctx, 7, auth.RoleStudent, 4242)
		assert.ErrorIs(t, err, admission.ErrAdmissionNotFound)
	})
}
