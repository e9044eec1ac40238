package course

import (
	"time"

	"github.com/uptrace/bun"
)

// GenericCourse is the wildcard course_fee entry used when no course-specific
// fee is configured for a category.
const GenericCourse = "GENERIC"

// FeeCategories is the fixed set a course's total fee is computed over.
var FeeCategories = []string{
	"Admission Fee",
	"Tuition Fee",
	"Exam Fee",
	"Library Fee",
	"Hostel Fee",
	"Other Fee",
}

type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID            int       `bun:"id,pk,autoincrement" json:"id"`
	Name          string    `bun:"name,notnull" json:"name" validate:"required"`
	Code          string    `bun:"code,unique,notnull" json:"code" validate:"required"`
	DurationYears int       `bun:"duration_years,notnull" json:"durationYears" validate:"min=1,max=10"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// CourseFee is reference data: one amount per (course, category), with
// GENERIC as the wildcard course.
type CourseFee struct {
	bun.BaseModel `bun:"table:course_fees,alias:cf"`

	ID         int     `bun:"id,pk,autoincrement" json:"id"`
	CourseName string  `bun:"course_name,notnull" json:"courseName" validate:"required"`
	Category   string  `bun:"category,notnull" json:"category" validate:"required"`
	Amount     float64 `bun:"amount,notnull" json:"amount" validate:"min=0"`
}

// CategoryAmount is one line of a resolved fee breakdown.
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}
