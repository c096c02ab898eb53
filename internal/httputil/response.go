// Package httputil holds the JSON error envelope and query helpers shared by handlers.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/erpnext-api-tester/internal/errors"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type errorMapping struct {
	target error
	status int
	body   ErrorResponse
	// echo replaces body.Message with err.Error(). Only set for errors whose text is
	// built from client input.
	echo bool
}

// Checked in order; the first match wins. ErrIntegrity precedes ErrInvalidInput so a
// decryption failure caused by a bad stored field never echoes that field's text.
var errorMappings = []errorMapping{
	{target: apperrors.ErrNotFound, status: http.StatusNotFound,
		body: ErrorResponse{Error: "not_found", Message: "The requested resource was not found"}},
	{target: apperrors.ErrConflict, status: http.StatusConflict,
		body: ErrorResponse{Error: "conflict", Message: "A conflict occurred with existing data"}},
	{target: apperrors.ErrIntegrity, status: http.StatusUnprocessableEntity,
		body: ErrorResponse{
			Error:   "integrity_error",
			Message: "credential could not be decrypted",
			Code:    "credential_decryption_failed",
		}},
	{target: apperrors.ErrInvalidInput, status: http.StatusUnprocessableEntity,
		body: ErrorResponse{Error: "invalid_input"}, echo: true},
	{target: apperrors.ErrUpstream, status: http.StatusBadGateway,
		body: ErrorResponse{Error: "upstream_error", Message: "The ERPNext instance could not be reached"}},
	{target: apperrors.ErrUnauthorized, status: http.StatusUnauthorized,
		body: ErrorResponse{Error: "unauthorized", Message: "Authentication is required"}},
	{target: apperrors.ErrForbidden, status: http.StatusForbidden,
		body: ErrorResponse{Error: "forbidden", Message: "Access to this resource is not allowed"}},
}

var internalError = ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}

// HandleErrorGin writes the JSON error matching err's sentinel. Unknown errors become a
// bare 500 so infrastructure details (DSNs, SQL, sealed values) never reach the client.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status, body := http.StatusInternalServerError, internalError
	for _, m := range errorMappings {
		if !apperrors.Is(err, m.target) {
			continue
		}
		status, body = m.status, m.body
		if m.echo {
			body.Message = err.Error()
		}
		break
	}

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c, level, "request failed",
			slog.Int("status_code", status),
			slog.String("error_code", body.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(status, body)
}

// HandleBadRequestGin answers 400 for bodies or parameters that could not be parsed.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusBadRequest, "bad_request", err, logger)
}

// HandleValidationErrorGin answers 422 for well-formed requests that fail validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusUnprocessableEntity, "validation_error", err, logger)
}

func writeClientError(c *gin.Context, status int, code string, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("rejected request", slog.String("error_code", code), slog.Any("error", err))
	}
	c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}
