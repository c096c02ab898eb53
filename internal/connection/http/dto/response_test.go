package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	connectionDomain "github.com/allisson/erpnext-api-tester/internal/connection/domain"
	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
	"github.com/allisson/erpnext-api-tester/internal/erpnext"
)

func TestMapConnectionToResponse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sealed := cryptoDomain.SealedSecret{Nonce: "bm9uY2U=", Ciphertext: "c2VjcmV0", Tag: "dGFn"}
	conn := &connectionDomain.Connection{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        "Production",
		BaseURL:     "https://erp.example.com",
		Credentials: connectionDomain.CredentialPair{APIKey: sealed, APISecret: sealed},
		Algorithm:   cryptoDomain.ChaCha20,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	resp := MapConnectionToResponse(conn)

	assert.Equal(t, conn.ID.String(), resp.ID)
	assert.Equal(t, "chacha20-poly1305", resp.Algorithm)
	assert.True(t, resp.HasCredentials)

	payload, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "c2VjcmV0")
	assert.NotContains(t, string(payload), "bm9uY2U=")
}

func TestMapConnectionsToListResponse(t *testing.T) {
	resp := MapConnectionsToListResponse(nil)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)

	resp = MapConnectionsToListResponse([]*connectionDomain.Connection{
		{ID: uuid.Must(uuid.NewV7()), Name: "a"},
		{ID: uuid.Must(uuid.NewV7()), Name: "b"},
	})
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "a", resp.Data[0].Name)
	assert.False(t, resp.Data[0].HasCredentials)
}

func TestMapResponseToSendResponse(t *testing.T) {
	resp := MapResponseToSendResponse(&erpnext.Response{
		Status:   0,
		Duration: 1500 * time.Millisecond,
		Error:    "dial tcp: connection refused",
	})

	assert.Equal(t, 0, resp.Status)
	assert.Equal(t, int64(1500), resp.DurationMS)
	assert.Equal(t, "dial tcp: connection refused", resp.Error)
}
