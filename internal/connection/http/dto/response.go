package dto

import (
	"time"

	connectionDomain "github.com/allisson/erpnext-api-tester/internal/connection/domain"
	"github.com/allisson/erpnext-api-tester/internal/erpnext"
)

// ConnectionResponse represents a connection in API responses. Sealed fields and
// plaintext credentials are never part of it.
type ConnectionResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	BaseURL        string    `json:"base_url"`
	Algorithm      string    `json:"algorithm"`
	HasCredentials bool      `json:"has_credentials"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MapConnectionToResponse converts a domain connection to an API response.
func MapConnectionToResponse(conn *connectionDomain.Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:             conn.ID.String(),
		Name:           conn.Name,
		BaseURL:        conn.BaseURL,
		Algorithm:      string(conn.Algorithm),
		HasCredentials: conn.HasSecrets(),
		CreatedAt:      conn.CreatedAt,
		UpdatedAt:      conn.UpdatedAt,
	}
}

// ListConnectionsResponse represents the list of every stored connection.
type ListConnectionsResponse struct {
	Data []ConnectionResponse `json:"data"`
}

// MapConnectionsToListResponse converts domain connections to a list response.
func MapConnectionsToListResponse(conns []*connectionDomain.Connection) ListConnectionsResponse {
	data := make([]ConnectionResponse, 0, len(conns))
	for _, conn := range conns {
		data = append(data, MapConnectionToResponse(conn))
	}
	return ListConnectionsResponse{Data: data}
}

// PingResponse reports the connectivity check run after a connection is created.
type PingResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// CreateConnectionResponse is returned by the create endpoint.
type CreateConnectionResponse struct {
	Connection ConnectionResponse `json:"connection"`
	Ping       PingResponse       `json:"ping"`
}

// DeleteAllResponse reports how many connections the reset removed.
type DeleteAllResponse struct {
	Deleted int64 `json:"deleted"`
}

// DocTypesResponse lists DocType names of an instance.
type DocTypesResponse struct {
	Data  []string `json:"data"`
	Count int      `json:"count"`
}

// SendRequestResponse is the outcome of a raw call.
type SendRequestResponse struct {
	Status     int               `json:"status"`
	Headers    map[string]string `json:"headers"`
	Data       any               `json:"data"`
	DurationMS int64             `json:"duration_ms"`
	Error      string            `json:"error,omitempty"`
}

// MapResponseToSendResponse converts an ERPNext response to an API response.
func MapResponseToSendResponse(resp *erpnext.Response) SendRequestResponse {
	return SendRequestResponse{
		Status:     resp.Status,
		Headers:    resp.Headers,
		Data:       resp.Body,
		DurationMS: resp.DurationMS(),
		Error:      resp.Error,
	}
}
