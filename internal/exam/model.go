package exam

import (
	"time"

	"github.com/uptrace/bun"
)

// Result status values. A result starts Pending when the exam form is
// submitted and moves to a graded status only through an admin update.
const (
	ResultStatusPending = "Pending"
	ResultStatusPassed  = "Passed"
	ResultStatusFailed  = "Failed"
)

// Exam is one sitting of a named exam, scoped to a course.
type Exam struct {
	bun.BaseModel `bun:"table:exams,alias:e"`

	ID           int       `bun:"id,pk,autoincrement" json:"id"`
	ExamName     string    `bun:"exam_name,notnull" json:"examName"`
	Subject      string    `bun:"subject,notnull" json:"subject"`
	Type         string    `bun:"exam_type,notnull" json:"examType"`
	Course       string    `bun:"course_name,notnull" json:"courseName"`
	ExamDate     string    `bun:"exam_date,notnull" json:"examDate"`
	ExamTime     string    `bun:"exam_time" json:"examTime"`
	Duration     int       `bun:"duration" json:"durationMinutes"`
	MaxMarks     int       `bun:"max_marks,notnull" json:"maxMarks"`
	Instructions string    `bun:"instructions" json:"instructions"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// Result is the per-student row for one exam. The unique index on
// (student_id, exam_id) keeps form submission single-shot.
type Result struct {
	bun.BaseModel `bun:"table:results,alias:res"`

	ID          int       `bun:"id,pk,autoincrement" json:"id"`
	StudentID   int       `bun:"student_id,notnull" json:"studentId"`
	ExamID      int       `bun:"exam_id,notnull" json:"examId"`
	Course      string    `bun:"course_name,notnull" json:"courseName"`
	Subject     string    `bun:"subject,notnull" json:"subject"`
	ObtainMarks int       `bun:"obtain_marks,notnull,default:0" json:"obtainMarks"`
	TotalMarks  int       `bun:"total_marks,notnull" json:"totalMarks"`
	Grade       string    `bun:"grade,notnull,default:''" json:"grade"`
	ExamType    string    `bun:"exam_type" json:"examType"`
	CGPA        *float64  `bun:"cgpa" json:"cgpa,omitempty"`
	Status      string    `bun:"status,notnull,default:'Pending'" json:"status"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// Group collects the sittings that share an exam name, in listing order.
type Group struct {
	ExamName string `json:"examName"`
	Sittings []Exam `json:"sittings"`
}

// CreateExamRequest is the admin request body for scheduling an exam.
type CreateExamRequest struct {
	ExamName     string `json:"examName" validate:"required"`
	Subject      string `json:"subject" validate:"required"`
	Type         string `json:"examType" validate:"required"`
	Course       string `json:"courseName" validate:"required"`
	ExamDate     string `json:"examDate" validate:"required"`
	ExamTime     string `json:"examTime"`
	Duration     int    `json:"durationMinutes"`
	MaxMarks     int    `json:"maxMarks" validate:"required,gt=0"`
	Instructions string `json:"instructions"`
}

// UpdateResultRequest is the admin request body for grading. Marks are
// overwritten in place, no history is kept.
type UpdateResultRequest struct {
	ObtainMarks int      `json:"obtainMarks" validate:"gte=0"`
	Grade       string   `json:"grade" validate:"required"`
	CGPA        *float64 `json:"cgpa"`
	Status      string   `json:"status" validate:"required,oneof=Pending Passed Failed"`
}
