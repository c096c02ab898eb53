// Package validation provides custom validation rules for the application.
package validation

import (
	"net/url"
	"strings"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
	apperrors "github.com/allisson/erpnext-api-tester/internal/errors"
)

// allowedMethods are the HTTP methods the request runner forwards to ERPNext.
var allowedMethods = map[string]struct{}{
	"GET":    {},
	"POST":   {},
	"PUT":    {},
	"DELETE": {},
	"PATCH":  {},
}

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// HTTPURL validates an absolute http or https URL with a host.
var HTTPURL = validation.NewStringRuleWithError(
	func(s string) bool {
		u, err := url.Parse(strings.TrimSpace(s))
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	},
	validation.NewError("validation_http_url", "must be an absolute http or https url"),
)

// HTTPMethod validates one of GET, POST, PUT, DELETE or PATCH, case-insensitively.
var HTTPMethod = validation.NewStringRuleWithError(
	func(s string) bool {
		_, ok := allowedMethods[strings.ToUpper(s)]
		return ok
	},
	validation.NewError("validation_http_method", "must be one of GET, POST, PUT, DELETE, PATCH"),
)

// APIPath validates a Frappe REST path.
var APIPath = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.HasPrefix(s, "/api/")
	},
	validation.NewError("validation_api_path", "must start with /api/"),
)

// MasterKey validates a standard base64 value decoding to exactly 32 bytes.
var MasterKey = validation.NewStringRuleWithError(
	cryptoDomain.ValidateMasterKey,
	validation.NewError("validation_master_key", "must be base64 encoding exactly 32 bytes"),
)
