// Package mocks provides testify mock implementations of the connection use case
// interfaces and their collaborators.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	connectionDomain "github.com/allisson/erpnext-api-tester/internal/connection/domain"
	"github.com/allisson/erpnext-api-tester/internal/connection/usecase"
	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
	"github.com/allisson/erpnext-api-tester/internal/erpnext"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockConnectionRepository is a mock implementation of usecase.ConnectionRepository.
type MockConnectionRepository struct {
	mock.Mock
}

// NewMockConnectionRepository creates a mock that asserts its expectations on cleanup.
func NewMockConnectionRepository(t testingT) *MockConnectionRepository {
	m := &MockConnectionRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockConnectionRepository) Create(ctx context.Context, conn *connectionDomain.Connection) error {
	return m.Called(ctx, conn).Error(0)
}

func (m *MockConnectionRepository) Get(ctx context.Context, id uuid.UUID) (*connectionDomain.Connection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connectionDomain.Connection), args.Error(1)
}

func (m *MockConnectionRepository) List(ctx context.Context) ([]*connectionDomain.Connection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*connectionDomain.Connection), args.Error(1)
}

func (m *MockConnectionRepository) ListForUpdate(ctx context.Context) ([]*connectionDomain.Connection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*connectionDomain.Connection), args.Error(1)
}

func (m *MockConnectionRepository) Update(ctx context.Context, conn *connectionDomain.Connection) error {
	return m.Called(ctx, conn).Error(0)
}

func (m *MockConnectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockConnectionRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockConnectionUseCase is a mock implementation of usecase.ConnectionUseCase.
type MockConnectionUseCase struct {
	mock.Mock
}

// NewMockConnectionUseCase creates a mock that asserts its expectations on cleanup.
func NewMockConnectionUseCase(t testingT) *MockConnectionUseCase {
	m := &MockConnectionUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockConnectionUseCase) Create(
	ctx context.Context,
	name, baseURL, apiKey, apiSecret string,
) (*connectionDomain.Connection, error) {
	args := m.Called(ctx, name, baseURL, apiKey, apiSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connectionDomain.Connection), args.Error(1)
}

func (m *MockConnectionUseCase) Get(ctx context.Context, id uuid.UUID) (*connectionDomain.Connection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connectionDomain.Connection), args.Error(1)
}

func (m *MockConnectionUseCase) List(ctx context.Context) ([]*connectionDomain.Connection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*connectionDomain.Connection), args.Error(1)
}

func (m *MockConnectionUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	input usecase.UpdateInput,
) (*connectionDomain.Connection, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connectionDomain.Connection), args.Error(1)
}

func (m *MockConnectionUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockConnectionUseCase) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConnectionUseCase) RevealCredentials(
	ctx context.Context,
	id uuid.UUID,
) (*connectionDomain.RevealedCredentials, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connectionDomain.RevealedCredentials), args.Error(1)
}

func (m *MockConnectionUseCase) RotateMasterKey(ctx context.Context, newKey *cryptoDomain.MasterKey) (int, error) {
	args := m.Called(ctx, newKey)
	return args.Int(0), args.Error(1)
}

func (m *MockConnectionUseCase) VerifyCredentials(ctx context.Context) (*usecase.VerificationReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.VerificationReport), args.Error(1)
}

// MockRequestUseCase is a mock implementation of usecase.RequestUseCase.
type MockRequestUseCase struct {
	mock.Mock
}

// NewMockRequestUseCase creates a mock that asserts its expectations on cleanup.
func NewMockRequestUseCase(t testingT) *MockRequestUseCase {
	m := &MockRequestUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRequestUseCase) Send(
	ctx context.Context,
	connectionID uuid.UUID,
	req erpnext.Request,
) (*erpnext.Response, error) {
	args := m.Called(ctx, connectionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erpnext.Response), args.Error(1)
}

func (m *MockRequestUseCase) Ping(ctx context.Context, connectionID uuid.UUID) (bool, error) {
	args := m.Called(ctx, connectionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestUseCase) ListDocTypes(ctx context.Context, connectionID uuid.UUID, limit int) ([]string, error) {
	args := m.Called(ctx, connectionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRequestUseCase) TestConnection(ctx context.Context, connectionID uuid.UUID) (*erpnext.TestResult, error) {
	args := m.Called(ctx, connectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erpnext.TestResult), args.Error(1)
}

func (m *MockRequestUseCase) InstanceInfo(
	ctx context.Context,
	connectionID uuid.UUID,
) (*erpnext.InstanceInfo, error) {
	args := m.Called(ctx, connectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erpnext.InstanceInfo), args.Error(1)
}

// MockERPNextClient is a mock implementation of usecase.ERPNextClient.
type MockERPNextClient struct {
	mock.Mock
}

// NewMockERPNextClient creates a mock that asserts its expectations on cleanup.
func NewMockERPNextClient(t testingT) *MockERPNextClient {
	m := &MockERPNextClient{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockERPNextClient) Ping(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockERPNextClient) ListDocTypes(ctx context.Context, limit int) ([]string, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockERPNextClient) SendRaw(ctx context.Context, req erpnext.Request) (*erpnext.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erpnext.Response), args.Error(1)
}

func (m *MockERPNextClient) TestConnection(ctx context.Context) *erpnext.TestResult {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*erpnext.TestResult)
}

func (m *MockERPNextClient) InstanceInfo(ctx context.Context) *erpnext.InstanceInfo {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*erpnext.InstanceInfo)
}

var (
	_ usecase.ConnectionRepository = (*MockConnectionRepository)(nil)
	_ usecase.ConnectionUseCase    = (*MockConnectionUseCase)(nil)
	_ usecase.RequestUseCase       = (*MockRequestUseCase)(nil)
	_ usecase.ERPNextClient        = (*MockERPNextClient)(nil)
)
