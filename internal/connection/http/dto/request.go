// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"strings"

	validation "github.com/jellydator/validation"

	connectionDomain "github.com/allisson/erpnext-api-tester/internal/connection/domain"
	"github.com/allisson/erpnext-api-tester/internal/connection/usecase"
	"github.com/allisson/erpnext-api-tester/internal/erpnext"
	customValidation "github.com/allisson/erpnext-api-tester/internal/validation"
)

// CreateConnectionRequest contains the parameters for creating a connection.
type CreateConnectionRequest struct {
	Name      string `json:"name"`
	BaseURL   string `json:"base_url"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

// Validate checks if the create connection request is valid.
func (r *CreateConnectionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.RuneLength(1, connectionDomain.MaxNameLength),
		),
		validation.Field(&r.BaseURL, validation.Required, customValidation.HTTPURL),
		validation.Field(&r.APIKey, validation.Required, customValidation.NotBlank),
		validation.Field(&r.APISecret, validation.Required, customValidation.NotBlank),
	)
}

// UpdateConnectionRequest contains the optional fields of a connection update.
// APIKey and APISecret rotate the stored pair and must be sent together.
type UpdateConnectionRequest struct {
	Name      *string `json:"name"`
	BaseURL   *string `json:"base_url"`
	APIKey    *string `json:"api_key"`
	APISecret *string `json:"api_secret"`
}

// Validate checks if the update connection request is valid.
func (r *UpdateConnectionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.NilOrNotEmpty,
			customValidation.NotBlank,
			validation.RuneLength(1, connectionDomain.MaxNameLength),
		),
		validation.Field(&r.BaseURL, validation.NilOrNotEmpty, customValidation.HTTPURL),
		validation.Field(&r.APIKey,
			validation.When(r.APISecret != nil, validation.NotNil),
			validation.NilOrNotEmpty,
			customValidation.NotBlank,
		),
		validation.Field(&r.APISecret,
			validation.When(r.APIKey != nil, validation.NotNil),
			validation.NilOrNotEmpty,
			customValidation.NotBlank,
		),
	)
}

// ToInput converts the request into a use case update.
func (r *UpdateConnectionRequest) ToInput() usecase.UpdateInput {
	return usecase.UpdateInput{
		Name:      r.Name,
		BaseURL:   r.BaseURL,
		APIKey:    r.APIKey,
		APISecret: r.APISecret,
	}
}

// SendRequestRequest describes a raw call to run against a connection's instance.
type SendRequestRequest struct {
	Method string            `json:"method"`
	Path   string            `json:"path"`
	Query  map[string]string `json:"query"`
	Body   any               `json:"body"`
}

// Validate checks if the send request is valid.
func (r *SendRequestRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Method, validation.Required, customValidation.HTTPMethod),
		validation.Field(&r.Path, validation.Required, customValidation.APIPath),
	)
}

// ToRequest converts the request into an outbound ERPNext request.
func (r *SendRequestRequest) ToRequest() erpnext.Request {
	return erpnext.Request{
		Method: strings.ToUpper(r.Method),
		Path:   r.Path,
		Query:  r.Query,
		Body:   r.Body,
	}
}
