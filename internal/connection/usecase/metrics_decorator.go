package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	connectionDomain "github.com/allisson/erpnext-api-tester/internal/connection/domain"
	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
	"github.com/allisson/erpnext-api-tester/internal/erpnext"
	"github.com/allisson/erpnext-api-tester/internal/metrics"
)

const (
	connectionsDomain = "connections"
	requestsDomain    = "requests"
)

func record(ctx context.Context, m metrics.BusinessMetrics, domain, operation string, start time.Time, err error) {
	status := metrics.OperationStatus(err)
	m.RecordOperation(ctx, domain, operation, status)
	m.RecordDuration(ctx, domain, operation, time.Since(start), status)
}

// connectionUseCaseWithMetrics decorates ConnectionUseCase with metrics instrumentation.
type connectionUseCaseWithMetrics struct {
	next    ConnectionUseCase
	metrics metrics.BusinessMetrics
}

// NewConnectionUseCaseWithMetrics wraps a ConnectionUseCase with metrics recording.
func NewConnectionUseCaseWithMetrics(useCase ConnectionUseCase, m metrics.BusinessMetrics) ConnectionUseCase {
	return &connectionUseCaseWithMetrics{next: useCase, metrics: m}
}

func (c *connectionUseCaseWithMetrics) Create(
	ctx context.Context,
	name, baseURL, apiKey, apiSecret string,
) (*connectionDomain.Connection, error) {
	start := time.Now()
	conn, err := c.next.Create(ctx, name, baseURL, apiKey, apiSecret)
	record(ctx, c.metrics, connectionsDomain, "connection_create", start, err)
	return conn, err
}

func (c *connectionUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*connectionDomain.Connection, error) {
	start := time.Now()
	conn, err := c.next.Get(ctx, id)
	record(ctx, c.metrics, connectionsDomain, "connection_get", start, err)
	return conn, err
}

func (c *connectionUseCaseWithMetrics) List(ctx context.Context) ([]*connectionDomain.Connection, error) {
	start := time.Now()
	conns, err := c.next.List(ctx)
	record(ctx, c.metrics, connectionsDomain, "connection_list", start, err)
	return conns, err
}

func (c *connectionUseCaseWithMetrics) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateInput,
) (*connectionDomain.Connection, error) {
	start := time.Now()
	conn, err := c.next.Update(ctx, id, input)
	record(ctx, c.metrics, connectionsDomain, "connection_update", start, err)
	return conn, err
}

func (c *connectionUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := c.next.Delete(ctx, id)
	record(ctx, c.metrics, connectionsDomain, "connection_delete", start, err)
	return err
}

func (c *connectionUseCaseWithMetrics) DeleteAll(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := c.next.DeleteAll(ctx)
	record(ctx, c.metrics, connectionsDomain, "connection_delete_all", start, err)
	return n, err
}

func (c *connectionUseCaseWithMetrics) RevealCredentials(
	ctx context.Context,
	id uuid.UUID,
) (*connectionDomain.RevealedCredentials, error) {
	start := time.Now()
	creds, err := c.next.RevealCredentials(ctx, id)
	record(ctx, c.metrics, connectionsDomain, "credentials_reveal", start, err)
	return creds, err
}

func (c *connectionUseCaseWithMetrics) RotateMasterKey(ctx context.Context, newKey *cryptoDomain.MasterKey) (int, error) {
	start := time.Now()
	n, err := c.next.RotateMasterKey(ctx, newKey)
	record(ctx, c.metrics, connectionsDomain, "master_key_rotate", start, err)
	return n, err
}

func (c *connectionUseCaseWithMetrics) VerifyCredentials(ctx context.Context) (*VerificationReport, error) {
	start := time.Now()
	report, err := c.next.VerifyCredentials(ctx)
	record(ctx, c.metrics, connectionsDomain, "credentials_verify", start, err)
	return report, err
}

// requestUseCaseWithMetrics decorates RequestUseCase with metrics instrumentation.
type requestUseCaseWithMetrics struct {
	next    RequestUseCase
	metrics metrics.BusinessMetrics
}

// NewRequestUseCaseWithMetrics wraps a RequestUseCase with metrics recording.
func NewRequestUseCaseWithMetrics(useCase RequestUseCase, m metrics.BusinessMetrics) RequestUseCase {
	return &requestUseCaseWithMetrics{next: useCase, metrics: m}
}

func (r *requestUseCaseWithMetrics) Send(
	ctx context.Context,
	connectionID uuid.UUID,
	req erpnext.Request,
) (*erpnext.Response, error) {
	start := time.Now()
	resp, err := r.next.Send(ctx, connectionID, req)
	record(ctx, r.metrics, requestsDomain, "request_send", start, err)
	return resp, err
}

func (r *requestUseCaseWithMetrics) Ping(ctx context.Context, connectionID uuid.UUID) (bool, error) {
	start := time.Now()
	ok, err := r.next.Ping(ctx, connectionID)
	record(ctx, r.metrics, requestsDomain, "request_ping", start, err)
	return ok, err
}

func (r *requestUseCaseWithMetrics) ListDocTypes(
	ctx context.Context,
	connectionID uuid.UUID,
	limit int,
) ([]string, error) {
	start := time.Now()
	names, err := r.next.ListDocTypes(ctx, connectionID, limit)
	record(ctx, r.metrics, requestsDomain, "request_doctypes", start, err)
	return names, err
}

func (r *requestUseCaseWithMetrics) TestConnection(
	ctx context.Context,
	connectionID uuid.UUID,
) (*erpnext.TestResult, error) {
	start := time.Now()
	result, err := r.next.TestConnection(ctx, connectionID)
	record(ctx, r.metrics, requestsDomain, "request_test", start, err)
	return result, err
}

func (r *requestUseCaseWithMetrics) InstanceInfo(
	ctx context.Context,
	connectionID uuid.UUID,
) (*erpnext.InstanceInfo, error) {
	start := time.Now()
	info, err := r.next.InstanceInfo(ctx, connectionID)
	record(ctx, r.metrics, requestsDomain, "request_info", start, err)
	return info, err
}
