package admission

import (
	"time"

	"github.com/uptrace/bun"
)

// Admission status values. Completed is reached only through a successful
// fee payment and is never reversed.
const (
	StatusPending   = "Pending"
	StatusSubmitted = "Submitted"
	StatusCompleted = "Completed"
)

type Admission struct {
	bun.BaseModel `bun:"table:admissions,alias:ad"`

	ID        int    `bun:"id,pk,autoincrement" json:"id"`
	AccountID int    `bun:"account_id,notnull" json:"accountId"`
	Name      string `bun:"student_name,notnull" json:"studentName"`
	Course    string `bun:"course_name,notnull" json:"courseName"`
	Email     string `bun:"email,notnull" json:"email"`
	BirthDate string `bun:"date_of_birth,notnull" json:"dateOfBirth"`
	Father    string `bun:"father_name,notnull" json:"fatherName"`
	Mother    string `bun:"mother_name,notnull" json:"motherName"`
	MobileNo  string `bun:"mobile_no,notnull" json:"mobileNo"`
	AadharNo  string `bun:"aadhar_no,notnull" json:"aadharNo"`
	Address   string `bun:"address,notnull" json:"address"`
	State     string `bun:"state,notnull" json:"state"`
	District  string `bun:"district,notnull" json:"district"`
	Pincode   string `bun:"pincode,notnull" json:"pincode"`
	Gender    string `bun:"gender,notnull" json:"gender"`

	PreviousCGPA *float64 `bun:"previous_year_cgpa" json:"previousYearCgpa,omitempty"`
	ObtainMarks  *int     `bun:"obtain_marks" json:"obtainMarks,omitempty"`
	TotalMarks   *int     `bun:"total_marks" json:"totalMarks,omitempty"`
	Percentage   *float64 `bun:"percentage" json:"percentage,omitempty"`
	PassingYear  *int     `bun:"passing_year" json:"passingYear,omitempty"`

	// Opaque references handed back by document storage.
	PhotoPath    string `bun:"photo_path" json:"photoPath,omitempty"`
	IDProofPath  string `bun:"id_proof_path" json:"idProofPath,omitempty"`
	SignPath     string `bun:"sign_path" json:"signPath,omitempty"`
	MarklistPath string `bun:"marklist_path" json:"marklistPath,omitempty"`

	Status    string    `bun:"status,notnull,default:'Pending'" json:"status"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// Student is the enrolled record spawned by an admission, exactly one per
// admission.
type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID          int       `bun:"id,pk,autoincrement" json:"id"`
	AdmissionID int       `bun:"admission_id,notnull,unique" json:"admissionId"`
	Name        string    `bun:"student_name,notnull" json:"studentName"`
	Course      string    `bun:"course_name,notnull" json:"courseName"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// SubmitRequest carries the admission form fields. Document paths are set by
// the handler after the uploads are stored.
type SubmitRequest struct {
	Name      string `json:"studentName" validate:"required"`
	Course    string `json:"courseName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	BirthDate string `json:"dateOfBirth" validate:"required"`
	Father    string `json:"fatherName" validate:"required"`
	Mother    string `json:"motherName" validate:"required"`
	MobileNo  string `json:"mobileNo" validate:"required"`
	AadharNo  string `json:"aadharNo" validate:"required"`
	Address   string `json:"address" validate:"required"`
	State     string `json:"state" validate:"required"`
	District  string `json:"district" validate:"required"`
	Pincode   string `json:"pincode" validate:"required"`
	Gender    string `json:"gender" validate:"required"`

	PreviousCGPA *float64 `json:"previousYearCgpa"`
	ObtainMarks  *int     `json:"obtainMarks"`
	TotalMarks   *int     `json:"totalMarks"`
	Percentage   *float64 `json:"percentage"`
	PassingYear  *int     `json:"passingYear"`

	PhotoPath    string `json:"-"`
	IDProofPath  string `json:"-"`
	SignPath     string `json:"-"`
	MarklistPath string `json:"-"`
}
