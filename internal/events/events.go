package events

import "context"

// Event names published after successful state transitions.
const (
	AdmissionSubmitted = "admission.submitted"
	FeePaid            = "fee.paid"
	ExamRegistered     = "exam.registered"
	ResultGraded       = "result.graded"
)

// Publisher delivers domain events to whatever broker is configured.
// Publishing is best-effort: workflows log failures but never roll back.
type Publisher interface {
	Publish(ctx context.Context, event string, payload interface{}) error
	Close() error
}

// Nop is used when no broker is configured or the connection failed at boot.
type Nop struct{}

func (Nop) Publish(ctx context.Context, event string, payload interface{}) error { return nil }

func (Nop) Close() error { return nil }
