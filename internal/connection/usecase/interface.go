// Package usecase implements connection management and the outbound calls made with
// a connection's credentials. Credentials are sealed before they reach a repository
// and unsealed only inside RevealCredentials.
package usecase

import (
	"context"

	"github.com/google/uuid"

	connectionDomain "github.com/allisson/erpnext-api-tester/internal/connection/domain"
	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
	"github.com/allisson/erpnext-api-tester/internal/erpnext"
)

// ConnectionRepository defines the interface for Connection persistence operations.
type ConnectionRepository interface {
	Create(ctx context.Context, conn *connectionDomain.Connection) error
	Get(ctx context.Context, id uuid.UUID) (*connectionDomain.Connection, error)
	List(ctx context.Context) ([]*connectionDomain.Connection, error)
	ListForUpdate(ctx context.Context) ([]*connectionDomain.Connection, error)
	Update(ctx context.Context, conn *connectionDomain.Connection) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)
}

// UpdateInput carries the optional fields of a connection update. Nil means unchanged.
// APIKey and APISecret must be supplied together.
type UpdateInput struct {
	Name      *string
	BaseURL   *string
	APIKey    *string
	APISecret *string
}

// VerificationFailure describes one stored credential pair that could not be unsealed.
type VerificationFailure struct {
	ConnectionID uuid.UUID `json:"connection_id"`
	Name         string    `json:"name"`
	Reason       string    `json:"reason"`
}

// VerificationReport is the result of scanning every stored credential pair.
type VerificationReport struct {
	Total    int                   `json:"total"`
	Valid    int                   `json:"valid"`
	Failures []VerificationFailure `json:"failures"`
}

// ConnectionUseCase defines the interface for connection management business logic.
type ConnectionUseCase interface {
	Create(ctx context.Context, name, baseURL, apiKey, apiSecret string) (*connectionDomain.Connection, error)
	Get(ctx context.Context, id uuid.UUID) (*connectionDomain.Connection, error)
	List(ctx context.Context) ([]*connectionDomain.Connection, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*connectionDomain.Connection, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)

	// RevealCredentials unseals both secrets of a connection for an immediate outbound
	// call. The result must not be logged, cached or returned to API clients.
	RevealCredentials(ctx context.Context, id uuid.UUID) (*connectionDomain.RevealedCredentials, error)

	// RotateMasterKey reseals every credential pair under newKey in one transaction and
	// installs newKey as the active key only after commit. Returns the resealed count.
	RotateMasterKey(ctx context.Context, newKey *cryptoDomain.MasterKey) (int, error)

	VerifyCredentials(ctx context.Context) (*VerificationReport, error)
}

// ERPNextClient is the subset of *erpnext.Client used by RequestUseCase.
type ERPNextClient interface {
	Ping(ctx context.Context) (bool, error)
	ListDocTypes(ctx context.Context, limit int) ([]string, error)
	SendRaw(ctx context.Context, req erpnext.Request) (*erpnext.Response, error)
	TestConnection(ctx context.Context) *erpnext.TestResult
	InstanceInfo(ctx context.Context) *erpnext.InstanceInfo
}

// ClientFactory builds a client for one outbound operation.
type ClientFactory func(baseURL string, creds connectionDomain.RevealedCredentials) ERPNextClient

// RequestUseCase performs ERPNext calls on behalf of a stored connection.
type RequestUseCase interface {
	Send(ctx context.Context, connectionID uuid.UUID, req erpnext.Request) (*erpnext.Response, error)
	Ping(ctx context.Context, connectionID uuid.UUID) (bool, error)
	ListDocTypes(ctx context.Context, connectionID uuid.UUID, limit int) ([]string, error)
	TestConnection(ctx context.Context, connectionID uuid.UUID) (*erpnext.TestResult, error)
	InstanceInfo(ctx context.Context, connectionID uuid.UUID) (*erpnext.InstanceInfo, error)
}
