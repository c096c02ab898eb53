package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	connectionDomain "github.com/allisson/erpnext-api-tester/internal/connection/domain"
	"github.com/allisson/erpnext-api-tester/internal/connection/usecase"
	"github.com/allisson/erpnext-api-tester/internal/connection/usecase/mocks"
	"github.com/allisson/erpnext-api-tester/internal/erpnext"
)

type requestFixture struct {
	connections *mocks.MockConnectionUseCase
	client      *mocks.MockERPNextClient
	useCase     usecase.RequestUseCase
	conn        *connectionDomain.Connection

	gotBaseURL string
	gotCreds   connectionDomain.RevealedCredentials
}

func newRequestFixture(t *testing.T) *requestFixture {
	f := &requestFixture{
		connections: mocks.NewMockConnectionUseCase(t),
		client:      mocks.NewMockERPNextClient(t),
		conn: &connectionDomain.Connection{
			ID:      uuid.Must(uuid.NewV7()),
			Name:    "Production",
			BaseURL: "https://erp.example.com",
		},
	}
	f.useCase = usecase.NewRequestUseCase(
		f.connections,
		func(baseURL string, creds connectionDomain.RevealedCredentials) usecase.ERPNextClient {
			f.gotBaseURL = baseURL
			f.gotCreds = creds
			return f.client
		},
	)
	return f
}

func (f *requestFixture) expectReveal() {
	f.connections.On("Get", mock.Anything, f.conn.ID).Return(f.conn, nil).Once()
	f.connections.On("RevealCredentials", mock.Anything, f.conn.ID).
		Return(&connectionDomain.RevealedCredentials{APIKey: "k", APISecret: "s"}, nil).
		Once()
}

func TestRequestUseCase_Send(t *testing.T) {
	f := newRequestFixture(t)
	f.expectReveal()

	req := erpnext.Request{Method: "GET", Path: "/api/resource/Customer"}
	want := &erpnext.Response{Status: 200, Body: map[string]any{"data": []any{}}}
	f.client.On("SendRaw", mock.Anything, req).Return(want, nil).Once()

	got, err := f.useCase.Send(context.Background(), f.conn.ID, req)
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, "https://erp.example.com", f.gotBaseURL)
	assert.Equal(t, connectionDomain.RevealedCredentials{APIKey: "k", APISecret: "s"}, f.gotCreds)
}

func TestRequestUseCase_Ping(t *testing.T) {
	f := newRequestFixture(t)
	f.expectReveal()
	f.client.On("Ping", mock.Anything).Return(true, nil).Once()

	ok, err := f.useCase.Ping(context.Background(), f.conn.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRequestUseCase_ListDocTypes(t *testing.T) {
	f := newRequestFixture(t)
	f.expectReveal()
	f.client.On("ListDocTypes", mock.Anything, 25).Return([]string{"Customer", "Item"}, nil).Once()

	names, err := f.useCase.ListDocTypes(context.Background(), f.conn.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, []string{"Customer", "Item"}, names)
}

func TestRequestUseCase_TestConnection(t *testing.T) {
	f := newRequestFixture(t)
	f.expectReveal()
	result := &erpnext.TestResult{Success: true, Ping: true}
	f.client.On("TestConnection", mock.Anything).Return(result).Once()

	got, err := f.useCase.TestConnection(context.Background(), f.conn.ID)
	require.NoError(t, err)
	assert.Same(t, result, got)
}

func TestRequestUseCase_InstanceInfo(t *testing.T) {
	f := newRequestFixture(t)
	f.expectReveal()
	info := &erpnext.InstanceInfo{BaseURL: f.conn.BaseURL, Connected: true, Version: map[string]any{"frappe": "15.0.0"}}
	f.client.On("InstanceInfo", mock.Anything).Return(info).Once()

	got, err := f.useCase.InstanceInfo(context.Background(), f.conn.ID)
	require.NoError(t, err)
	assert.Same(t, info, got)
	assert.Equal(t, f.conn.BaseURL, f.gotBaseURL)
}

func TestRequestUseCase_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("connection not found", func(t *testing.T) {
		f := newRequestFixture(t)
		f.connections.On("Get", mock.Anything, f.conn.ID).
			Return(nil, connectionDomain.ErrConnectionNotFound).
			Once()

		_, err := f.useCase.Ping(ctx, f.conn.ID)
		assert.ErrorIs(t, err, connectionDomain.ErrConnectionNotFound)
	})

	t.Run("credentials cannot be decrypted", func(t *testing.T) {
		f := newRequestFixture(t)
		f.connections.On("Get", mock.Anything, f.conn.ID).Return(f.conn, nil).Once()
		f.connections.On("RevealCredentials", mock.Anything, f.conn.ID).
			Return(nil, connectionDomain.ErrCredentialDecryption).
			Once()

		resp, err := f.useCase.Send(ctx, f.conn.ID, erpnext.Request{Method: "GET", Path: "/api/method/ping"})
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, connectionDomain.ErrCredentialDecryption)
		assert.Empty(t, f.gotBaseURL)
	})

	t.Run("instance info without readable credentials", func(t *testing.T) {
		f := newRequestFixture(t)
		f.connections.On("Get", mock.Anything, f.conn.ID).Return(f.conn, nil).Once()
		f.connections.On("RevealCredentials", mock.Anything, f.conn.ID).
			Return(nil, connectionDomain.ErrCredentialDecryption).
			Once()

		info, err := f.useCase.InstanceInfo(ctx, f.conn.ID)
		assert.Nil(t, info)
		assert.ErrorIs(t, err, connectionDomain.ErrCredentialDecryption)
		assert.Empty(t, f.gotBaseURL)
	})
}
