package activity

import (
	"time"

	"github.com/uptrace/bun"
)

// Activity is one extracurricular record logged against a student.
type Activity struct {
	bun.BaseModel `bun:"table:social_activities,alias:sa"`

	ID          int       `bun:"id,pk,autoincrement" json:"id"`
	StudentID   int       `bun:"student_id,notnull" json:"studentId"`
	Course      string    `bun:"course_name,notnull" json:"courseName"`
	Category    string    `bun:"activity_category,notnull" json:"activityCategory"`
	Date        string    `bun:"activity_date,notnull" json:"activityDate"`
	Description string    `bun:"description" json:"description"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// CreateRequest is the request body for logging an activity.
type CreateRequest struct {
	Category    string `json:"activityCategory" validate:"required"`
	Date        string `json:"activityDate" validate:"required"`
	Description string `json:"description"`
}
