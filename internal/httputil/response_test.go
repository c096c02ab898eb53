package httputil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/erpnext-api-tester/internal/errors"
	"github.com/allisson/erpnext-api-tester/internal/httputil"
)

var unknownAlgorithm = apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported algorithm: rot13")

func TestHandleErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
		expectedCode   string
	}{
		{
			name:           "not found",
			err:            apperrors.Wrap(apperrors.ErrNotFound, "connection not found"),
			expectedStatus: http.StatusNotFound,
			expectedError:  "not_found",
		},
		{
			name:           "conflict",
			err:            apperrors.ErrConflict,
			expectedStatus: http.StatusConflict,
			expectedError:  "conflict",
		},
		{
			name:           "invalid input",
			err:            apperrors.Wrap(apperrors.ErrInvalidInput, "name is required"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "invalid_input",
		},
		{
			name:           "integrity",
			err:            fmt.Errorf("%w: tag mismatch", apperrors.ErrIntegrity),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "integrity_error",
			expectedCode:   "credential_decryption_failed",
		},
		{
			name:           "integrity wrapping invalid input",
			err:            fmt.Errorf("%w: %w", apperrors.ErrIntegrity, unknownAlgorithm),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "integrity_error",
			expectedCode:   "credential_decryption_failed",
		},
		{
			name:           "upstream",
			err:            apperrors.Wrap(apperrors.ErrUpstream, "dial tcp: connection refused"),
			expectedStatus: http.StatusBadGateway,
			expectedError:  "upstream_error",
		},
		{
			name:           "unauthorized",
			err:            apperrors.ErrUnauthorized,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "unauthorized",
		},
		{
			name:           "forbidden",
			err:            apperrors.ErrForbidden,
			expectedStatus: http.StatusForbidden,
			expectedError:  "forbidden",
		},
		{
			name:           "unknown",
			err:            errors.New("pq: relation does not exist"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			httputil.HandleErrorGin(c, tt.err, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var body httputil.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedError, body.Error)
			assert.Equal(t, tt.expectedCode, body.Code)
		})
	}
}

func TestHandleErrorGin_HidesDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		secret string
	}{
		{"integrity", fmt.Errorf("%w: sealed value c2stbGl2ZQ==", apperrors.ErrIntegrity), "c2stbGl2ZQ=="},
		{"integrity over invalid input", fmt.Errorf("%w: %w", apperrors.ErrIntegrity, unknownAlgorithm), "rot13"},
		{"internal", errors.New("dsn postgres://user:hunter2@db"), "hunter2"},
		{"upstream", apperrors.Wrap(apperrors.ErrUpstream, "token abc:def rejected"), "abc:def"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			httputil.HandleErrorGin(c, tt.err, nil)

			assert.NotContains(t, w.Body.String(), tt.secret)
		})
	}
}

func TestHandleErrorGin_Logs(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	httputil.HandleErrorGin(c, apperrors.ErrNotFound, logger)

	assert.Contains(t, buf.String(), `"status_code":404`)
	assert.Contains(t, buf.String(), `"error_code":"not_found"`)
}

func TestHandleErrorGin_NilError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	httputil.HandleErrorGin(c, nil, nil)

	assert.Empty(t, w.Body.String())
}

func TestHandleBadRequestGin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	httputil.HandleBadRequestGin(c, errors.New("invalid JSON body"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad_request","message":"invalid JSON body"}`, w.Body.String())
}

func TestHandleValidationErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	httputil.HandleValidationErrorGin(c, errors.New("name: cannot be blank."), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"validation_error","message":"name: cannot be blank."}`, w.Body.String())
}
