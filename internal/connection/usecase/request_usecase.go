package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/erpnext-api-tester/internal/erpnext"
)

// requestUseCase implements RequestUseCase. It reveals credentials immediately before
// each call and builds a fresh client, so plaintext lives only for one operation.
type requestUseCase struct {
	connectionUseCase ConnectionUseCase
	newClient         ClientFactory
}

// NewRequestUseCase creates a RequestUseCase.
func NewRequestUseCase(connectionUseCase ConnectionUseCase, newClient ClientFactory) RequestUseCase {
	return &requestUseCase{
		connectionUseCase: connectionUseCase,
		newClient:         newClient,
	}
}

func (r *requestUseCase) client(ctx context.Context, connectionID uuid.UUID) (ERPNextClient, error) {
	conn, err := r.connectionUseCase.Get(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	creds, err := r.connectionUseCase.RevealCredentials(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	return r.newClient(conn.BaseURL, *creds), nil
}

// Send performs a raw request against the connection's instance.
func (r *requestUseCase) Send(
	ctx context.Context,
	connectionID uuid.UUID,
	req erpnext.Request,
) (*erpnext.Response, error) {
	client, err := r.client(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	return client.SendRaw(ctx, req)
}

// Ping checks connectivity of the connection's instance.
func (r *requestUseCase) Ping(ctx context.Context, connectionID uuid.UUID) (bool, error) {
	client, err := r.client(ctx, connectionID)
	if err != nil {
		return false, err
	}
	return client.Ping(ctx)
}

// ListDocTypes lists DocType names of the connection's instance.
func (r *requestUseCase) ListDocTypes(ctx context.Context, connectionID uuid.UUID, limit int) ([]string, error) {
	client, err := r.client(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	return client.ListDocTypes(ctx, limit)
}

// TestConnection runs the full connectivity check for a connection.
func (r *requestUseCase) TestConnection(ctx context.Context, connectionID uuid.UUID) (*erpnext.TestResult, error) {
	client, err := r.client(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	return client.TestConnection(ctx), nil
}

// InstanceInfo reports the app versions installed on the connection's instance.
func (r *requestUseCase) InstanceInfo(ctx context.Context, connectionID uuid.UUID) (*erpnext.InstanceInfo, error) {
	client, err := r.client(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	return client.InstanceInfo(ctx), nil
}
