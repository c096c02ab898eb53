// Package mocks provides testify mocks for the KMS collaborators of the crypto service.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockKMSService is a mock of service.KMSService.
type MockKMSService struct {
	mock.Mock
}

// NewMockKMSService creates a mock that asserts its expectations on cleanup.
func NewMockKMSService(t testingT) *MockKMSService {
	m := &MockKMSService{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockKMSService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	args := m.Called(ctx, keyURI)
	keeper, _ := args.Get(0).(cryptoDomain.KMSKeeper)
	return keeper, args.Error(1)
}

// MockKMSKeeper is a mock of domain.KMSKeeper.
type MockKMSKeeper struct {
	mock.Mock
}

// NewMockKMSKeeper creates a mock that asserts its expectations on cleanup.
func NewMockKMSKeeper(t testingT) *MockKMSKeeper {
	m := &MockKMSKeeper{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockKMSKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, plaintext)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

func (m *MockKMSKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

func (m *MockKMSKeeper) Close() error {
	return m.Called().Error(0)
}
