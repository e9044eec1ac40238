package fee

import (
	"time"

	"github.com/uptrace/bun"
)

// Fee payment status values. Completed is terminal and irreversible.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// Fee records a single all-or-nothing payment against an admission. The
// partial unique index on (admission_id) where status is Completed is what
// guarantees at most one completed payment per admission, even under
// concurrent attempts.
type Fee struct {
	bun.BaseModel `bun:"table:fees,alias:f"`

	ID            int        `bun:"id,pk,autoincrement" json:"id"`
	AdmissionID   int        `bun:"admission_id,notnull" json:"admissionId"`
	StudentName   string     `bun:"student_name,notnull" json:"studentName"`
	Course        string     `bun:"course_name,notnull" json:"courseName"`
	TotalFee      float64    `bun:"total_fee,notnull" json:"totalFee"`
	Amount        float64    `bun:"amount,notnull" json:"amount"`
	PaymentMethod string     `bun:"payment_method,notnull" json:"paymentMethod"`
	Status        string     `bun:"status,notnull,default:'Pending'" json:"status"`
	PaymentDate   *time.Time `bun:"payment_date" json:"paymentDate,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// PayRequest is the request body for recording a payment.
type PayRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}
