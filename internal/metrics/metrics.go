package metrics

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database *DatabaseMetrics

	meter metric.Meter

	admissionsSubmitted metric.Int64Counter
	feesPaid            metric.Int64Counter
	feeAmountCollected  metric.Float64Counter
	examFormsSubmitted  metric.Int64Counter
	resultsGraded       metric.Int64Counter
	accountsRegistered  metric.Int64Counter
	receiptsGenerated   metric.Int64Counter
}

func New(serviceName string) (*Metrics, error) {
	meter := otel.Meter(serviceName)

	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	m := &Metrics{Database: database, meter: meter}

	m.admissionsSubmitted, err = meter.Int64Counter(
		"campus_linker.admissions.submitted",
		metric.WithDescription("Total number of admission applications submitted"),
		metric.WithUnit("{admission}"),
	)
	if err != nil {
		return nil, err
	}

	m.feesPaid, err = meter.Int64Counter(
		"campus_linker.fees.paid",
		metric.WithDescription("Total number of fee payments recorded"),
		metric.WithUnit("{payment}"),
	)
	if err != nil {
		return nil, err
	}

	m.feeAmountCollected, err = meter.Float64Counter(
		"campus_linker.fees.amount_collected",
		metric.WithDescription("Total fee amount collected"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.examFormsSubmitted, err = meter.Int64Counter(
		"campus_linker.exams.forms_submitted",
		metric.WithDescription("Total number of exam forms submitted"),
		metric.WithUnit("{form}"),
	)
	if err != nil {
		return nil, err
	}

	m.resultsGraded, err = meter.Int64Counter(
		"campus_linker.results.graded",
		metric.WithDescription("Total number of results graded by staff"),
		metric.WithUnit("{result}"),
	)
	if err != nil {
		return nil, err
	}

	m.accountsRegistered, err = meter.Int64Counter(
		"campus_linker.accounts.registered",
		metric.WithDescription("Total number of accounts registered"),
		metric.WithUnit("{account}"),
	)
	if err != nil {
		return nil, err
	}

	m.receiptsGenerated, err = meter.Int64Counter(
		"campus_linker.receipts.generated",
		metric.WithDescription("Total number of payment receipts generated"),
		metric.WithUnit("{receipt}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RegisterDB wires the connection pool gauges to the given database handle.
// Safe to call on a mock instance, where it does nothing.
func (m *Metrics) RegisterDB(db *sql.DB) error {
	if m == nil || m.meter == nil || m.Database == nil {
		return nil
	}
	return m.Database.RegisterDB(db, m.meter)
}

func (m *Metrics) RecordAdmissionSubmitted(ctx context.Context) {
	if m != nil && m.admissionsSubmitted != nil {
		m.admissionsSubmitted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordFeePaid(ctx context.Context, amount float64) {
	if m == nil {
		return
	}
	if m.feesPaid != nil {
		m.feesPaid.Add(ctx, 1)
	}
	if m.feeAmountCollected != nil {
		m.feeAmountCollected.Add(ctx, amount)
	}
}

func (m *Metrics) RecordExamFormSubmitted(ctx context.Context) {
	if m != nil && m.examFormsSubmitted != nil {
		m.examFormsSubmitted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordResultGraded(ctx context.Context) {
	if m != nil && m.resultsGraded != nil {
		m.resultsGraded.Add(ctx, 1)
	}
}

func (m *Metrics) RecordAccountRegistered(ctx context.Context) {
	if m != nil && m.accountsRegistered != nil {
		m.accountsRegistered.Add(ctx, 1)
	}
}

func (m *Metrics) RecordReceiptGenerated(ctx context.Context) {
	if m != nil && m.receiptsGenerated != nil {
		m.receiptsGenerated.Add(ctx, 1)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}}
}
