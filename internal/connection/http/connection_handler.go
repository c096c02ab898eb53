// Package http provides HTTP handlers for connection management and for the requests
// sent to ERPNext through a stored connection.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/erpnext-api-tester/internal/connection/http/dto"
	connectionUseCase "github.com/allisson/erpnext-api-tester/internal/connection/usecase"
	"github.com/allisson/erpnext-api-tester/internal/erpnext"
	apperrors "github.com/allisson/erpnext-api-tester/internal/errors"
	"github.com/allisson/erpnext-api-tester/internal/httputil"
	customValidation "github.com/allisson/erpnext-api-tester/internal/validation"
)

const maxDocTypeLimit = 10000

// ConnectionHandler handles HTTP requests for connections.
type ConnectionHandler struct {
	connectionUseCase connectionUseCase.ConnectionUseCase
	requestUseCase    connectionUseCase.RequestUseCase
	logger            *slog.Logger
}

// NewConnectionHandler creates a new connection handler with required dependencies.
func NewConnectionHandler(
	connectionUseCase connectionUseCase.ConnectionUseCase,
	requestUseCase connectionUseCase.RequestUseCase,
	logger *slog.Logger,
) *ConnectionHandler {
	return &ConnectionHandler{
		connectionUseCase: connectionUseCase,
		requestUseCase:    requestUseCase,
		logger:            logger,
	}
}

// RegisterRoutes mounts the connection endpoints on group.
func (h *ConnectionHandler) RegisterRoutes(group *gin.RouterGroup) {
	connections := group.Group("/connections")
	{
		connections.POST("", h.CreateHandler)
		connections.GET("", h.ListHandler)
		connections.DELETE("", h.DeleteAllHandler)
		connections.GET("/:id", h.GetHandler)
		connections.PATCH("/:id", h.UpdateHandler)
		connections.DELETE("/:id", h.DeleteHandler)
		connections.POST("/:id/test", h.TestHandler)
		connections.GET("/:id/info", h.InfoHandler)
		connections.GET("/:id/doctypes", h.DocTypesHandler)
		connections.POST("/:id/requests", h.SendRequestHandler)
	}
}

func (h *ConnectionHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid connection ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// CreateHandler stores a new connection and pings its instance.
// POST /v1/connections
// Returns 201 Created even when the ping fails; the outcome is reported in "ping".
func (h *ConnectionHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	conn, err := h.connectionUseCase.Create(
		c.Request.Context(),
		req.Name,
		req.BaseURL,
		req.APIKey,
		req.APISecret,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	ping := dto.PingResponse{}
	ok, err := h.requestUseCase.Ping(c.Request.Context(), conn.ID)
	switch {
	case err == nil:
		ping.OK = ok
	case apperrors.Is(err, apperrors.ErrUpstream):
		ping.Error = err.Error()
	default:
		h.logger.Warn("ping after create failed",
			slog.String("connection_id", conn.ID.String()),
			slog.Any("error", err),
		)
		ping.Error = "ping failed"
	}

	c.JSON(http.StatusCreated, dto.CreateConnectionResponse{
		Connection: dto.MapConnectionToResponse(conn),
		Ping:       ping,
	})
}

// ListHandler returns every connection, newest first.
// GET /v1/connections
func (h *ConnectionHandler) ListHandler(c *gin.Context) {
	conns, err := h.connectionUseCase.List(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapConnectionsToListResponse(conns))
}

// GetHandler returns one connection.
// GET /v1/connections/:id
func (h *ConnectionHandler) GetHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	conn, err := h.connectionUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapConnectionToResponse(conn))
}

// UpdateHandler applies a partial update.
// PATCH /v1/connections/:id
func (h *ConnectionHandler) UpdateHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	conn, err := h.connectionUseCase.Update(c.Request.Context(), id, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapConnectionToResponse(conn))
}

// DeleteHandler removes a connection and its credentials.
// DELETE /v1/connections/:id
// Returns 204 No Content.
func (h *ConnectionHandler) DeleteHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.connectionUseCase.Delete(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteAllHandler removes every connection.
// DELETE /v1/connections
func (h *ConnectionHandler) DeleteAllHandler(c *gin.Context) {
	deleted, err := h.connectionUseCase.DeleteAll(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteAllResponse{Deleted: deleted})
}

// TestHandler runs the full connectivity check.
// POST /v1/connections/:id/test
func (h *ConnectionHandler) TestHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	result, err := h.requestUseCase.TestConnection(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, result)
}

// InfoHandler reports the app versions installed on the connection's instance.
// Upstream failures are reported in the body with a 200 status.
// GET /v1/connections/:id/info
func (h *ConnectionHandler) InfoHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	info, err := h.requestUseCase.InstanceInfo(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, info)
}

// DocTypesHandler lists DocType names of the connection's instance.
// GET /v1/connections/:id/doctypes?limit=N
func (h *ConnectionHandler) DocTypesHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	limit, err := httputil.ParseLimit(c, "limit", erpnext.DefaultDocTypeLimit, maxDocTypeLimit)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	names, err := h.requestUseCase.ListDocTypes(c.Request.Context(), id, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.DocTypesResponse{Data: names, Count: len(names)})
}

// SendRequestHandler runs a raw call against the connection's instance.
// POST /v1/connections/:id/requests
// Upstream error statuses are returned with 200; the remote status is in the body.
func (h *ConnectionHandler) SendRequestHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.SendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	resp, err := h.requestUseCase.Send(c.Request.Context(), id, req.ToRequest())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapResponseToSendResponse(resp))
}
