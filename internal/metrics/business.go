package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "github.com/allisson/erpnext-api-tester/internal/errors"
)

// Operation status labels.
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusNotFound  = "not_found"
	StatusInvalid   = "invalid_input"
	StatusIntegrity = "integrity_failure"
	StatusUpstream  = "upstream_error"
)

// OperationStatus maps an operation error to a low-cardinality status label.
// Integrity failures get their own label so credential corruption can be alerted on.
func OperationStatus(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, apperrors.ErrIntegrity):
		return StatusIntegrity
	case errors.Is(err, apperrors.ErrNotFound):
		return StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidInput):
		return StatusInvalid
	case errors.Is(err, apperrors.ErrUpstream):
		return StatusUpstream
	default:
		return StatusError
	}
}

// BusinessMetrics records use case outcomes. Domains are "connections" and "requests";
// operations are names like "connection_create" or "credentials_reveal".
type BusinessMetrics interface {
	RecordOperation(ctx context.Context, domain, operation, status string)
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)
}

type businessMetrics struct {
	operations metric.Int64Counter
	durations  metric.Float64Histogram
}

// NewBusinessMetrics registers <namespace>_operations_total and
// <namespace>_operation_duration_seconds on the given provider.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operations, errOps := meter.Int64Counter(
		namespace+"_operations_total",
		metric.WithDescription("Connection and request use case calls, by outcome"),
		metric.WithUnit("{operation}"),
	)
	durations, errDur := meter.Float64Histogram(
		namespace+"_operation_duration_seconds",
		metric.WithDescription("Use case latency, including sealing and outbound calls"),
		metric.WithUnit("s"),
	)
	if err := errors.Join(errOps, errDur); err != nil {
		return nil, fmt.Errorf("register business instruments: %w", err)
	}

	return &businessMetrics{operations: operations, durations: durations}, nil
}

func operationAttributes(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(ctx context.Context, domain, operation string, d time.Duration, status string) {
	b.durations.Record(ctx, d.Seconds(), operationAttributes(domain, operation, status))
}

// NoOpBusinessMetrics discards everything. Used when METRICS_ENABLED is false.
type NoOpBusinessMetrics struct{}

func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (*NoOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (*NoOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}
