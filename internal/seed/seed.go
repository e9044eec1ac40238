package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"campus-linker/internal/auth"
	"campus-linker/internal/course"
	"campus-linker/internal/exam"

	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// Seed loads the reference data a fresh database needs: the course catalog,
// the default fee schedule, a handful of scheduled exams and the admin
// account. Each table is seeded only when it is empty, so restarts are safe.
func Seed(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	if err := seedCourses(ctx, db, logger); err != nil {
		return fmt.Errorf("seeding courses: %w", err)
	}
	if err := seedCourseFees(ctx, db, logger); err != nil {
		return fmt.Errorf("seeding course fees: %w", err)
	}
	if err := seedExams(ctx, db, logger); err != nil {
		return fmt.Errorf("seeding exams: %w", err)
	}
	if err := seedAdminAccount(ctx, db, logger); err != nil {
		return fmt.Errorf("seeding admin account: %w", err)
	}
	return nil
}

func seedCourses(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	count, err := db.NewSelect().Model((*course.Course)(nil)).Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	courses := []course.Course{
		{Name: "BBA", Code: "BBA001", DurationYears: 3},
		{Name: "B.Com", Code: "BCOM001", DurationYears: 3},
		{Name: "B.Sc", Code: "BSC001", DurationYears: 3},
		{Name: "MBA", Code: "MBA001", DurationYears: 2},
		{Name: "M.Com", Code: "MCOM001", DurationYears: 2},
		{Name: "M.Sc", Code: "MSC001", DurationYears: 2},
		{Name: "Data Science", Code: "DS001", DurationYears: 2},
	}

	if _, err := db.NewInsert().Model(&courses).Exec(ctx); err != nil {
		return err
	}
	logger.InfoContext(ctx, "seeded courses", "count", len(courses))
	return nil
}

func seedCourseFees(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	count, err := db.NewSelect().Model((*course.CourseFee)(nil)).Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	fees := []course.CourseFee{
		{CourseName: "BBA", Category: "Admission Fee", Amount: 5000},
		{CourseName: "BBA", Category: "Tuition Fee", Amount: 20000},
		{CourseName: "BBA", Category: "Exam Fee", Amount: 1500},
		{CourseName: "B.Com", Category: "Admission Fee", Amount: 4500},
		{CourseName: "B.Com", Category: "Tuition Fee", Amount: 18000},
		{CourseName: "B.Com", Category: "Exam Fee", Amount: 1200},
		{CourseName: "B.Sc", Category: "Admission Fee", Amount: 5200},
		{CourseName: "B.Sc", Category: "Tuition Fee", Amount: 22000},
		{CourseName: "B.Sc", Category: "Exam Fee", Amount: 1600},
		{CourseName: "M.Sc", Category: "Admission Fee", Amount: 5000},
		{CourseName: "M.Sc", Category: "Tuition Fee", Amount: 22000},
		{CourseName: "M.Sc", Category: "Exam Fee", Amount: 1500},
		{CourseName: "M.Sc", Category: "Library Fee", Amount: 500},
		{CourseName: "M.Sc", Category: "Hostel Fee", Amount: 15000},
		{CourseName: "M.Sc", Category: "Other Fee", Amount: 0},
	}

	if _, err := db.NewInsert().Model(&fees).Exec(ctx); err != nil {
		return err
	}
	logger.InfoContext(ctx, "seeded course fees", "count", len(fees))
	return nil
}

func seedExams(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	count, err := db.NewSelect().Model((*exam.Exam)(nil)).Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	exams := []exam.Exam{
		{ExamName: "Midterm Exam 2025", Subject: "Mathematics", Type: "Midterm", Course: "BBA", ExamDate: "2025-03-15", ExamTime: "10:00", Duration: 180, MaxMarks: 100, Instructions: "Bring calculator and ID card"},
		{ExamName: "Final Exam 2025", Subject: "Computer Science", Type: "Final", Course: "BBA", ExamDate: "2025-05-20", ExamTime: "14:00", Duration: 180, MaxMarks: 100, Instructions: "No electronic devices allowed"},
		{ExamName: "Midterm Exam 2025", Subject: "Accounting", Type: "Midterm", Course: "B.Com", ExamDate: "2025-03-16", ExamTime: "10:00", Duration: 180, MaxMarks: 100, Instructions: "Open book exam"},
		{ExamName: "Midterm Exam 2025", Subject: "Physics", Type: "Midterm", Course: "M.Sc", ExamDate: "2025-03-17", ExamTime: "09:00", Duration: 180, MaxMarks: 100, Instructions: "Bring calculator and ID card"},
		{ExamName: "Midterm Exam 2025", Subject: "Chemistry", Type: "Midterm", Course: "M.Sc", ExamDate: "2025-03-18", ExamTime: "10:00", Duration: 180, MaxMarks: 100, Instructions: "No electronic devices allowed"},
		{ExamName: "Final Exam 2025", Subject: "Advanced Mathematics", Type: "Final", Course: "M.Sc", ExamDate: "2025-05-21", ExamTime: "14:00", Duration: 180, MaxMarks: 100, Instructions: "Open book exam"},
		{ExamName: "Final Exam 2025", Subject: "Quantum Mechanics", Type: "Final", Course: "M.Sc", ExamDate: "2025-05-22", ExamTime: "14:00", Duration: 180, MaxMarks: 100, Instructions: "Bring scientific calculator"},
	}

	if _, err := db.NewInsert().Model(&exams).Exec(ctx); err != nil {
		return err
	}
	logger.InfoContext(ctx, "seeded exams", "count", len(exams))
	return nil
}

func seedAdminAccount(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	count, err := db.NewSelect().
		Model((*auth.Account)(nil)).
		Where("role = ?", auth.RoleAdmin).
		Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &auth.Account{
		Username: "admin",
		Password: string(hashed),
		Email:    "admin@campuslinker.edu",
		MobileNo: "9876543210",
		Role:     auth.RoleAdmin,
	}
	if _, err := db.NewInsert().Model(admin).Exec(ctx); err != nil {
		return err
	}
	logger.InfoContext(ctx, "seeded admin account", "username", admin.Username)
	return nil
}
