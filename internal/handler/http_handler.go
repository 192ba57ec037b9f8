package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/firdaus0729/shoplive/internal/domain"
	"github.com/firdaus0729/shoplive/internal/service"
	"github.com/firdaus0729/shoplive/pkg/log"
	"github.com/firdaus0729/shoplive/pkg/middleware"
	"github.com/firdaus0729/shoplive/pkg/response"
)

// HTTPHandler handles HTTP requests for stream management.
type HTTPHandler struct {
	streamService  service.StreamService
	authMiddleware *middleware.AuthMiddleware
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(streamService service.StreamService, authMiddleware *middleware.AuthMiddleware) *HTTPHandler {
	return &HTTPHandler{
		streamService:  streamService,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		streams := api.Group("/streams")
		{
			// Public routes
			streams.GET("", h.ListStreams)
			streams.GET("/:id", h.GetStream)

			// Protected routes
			streams.POST("", h.authMiddleware.RequireAuth(), h.CreateStream)
			streams.POST("/:id/start", h.authMiddleware.RequireAuth(), h.StartStream)
			streams.POST("/:id/stop", h.authMiddleware.RequireAuth(), h.StopStream)
		}
	}
}

// CreateStream creates a new scheduled stream.
func (h *HTTPHandler) CreateStream(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)
	username := middleware.GetUsername(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.CreateStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind create stream request")
		response.BadRequest(c, err.Error())
		return
	}

	stream, err := h.streamService.CreateStream(ctx, userID, username, &req)
	if err != nil {
		l.Error().Err(err).Msg("failed to create stream")
		response.InternalError(c, "failed to create stream")
		return
	}

	response.Created(c, stream.ToResponse())
}

// GetStream retrieves a stream by ID.
func (h *HTTPHandler) GetStream(c *gin.Context) {
	streamID := c.Param("id")
	ctx := log.WithStream(c.Request.Context(), streamID)
	l := log.Ctx(ctx)

	stream, err := h.streamService.GetStream(ctx, streamID)
	if err != nil {
		if errors.Is(err, service.ErrStreamNotFound) {
			response.NotFound(c, "stream not found")
			return
		}
		l.Error().Err(err).Msg("failed to get stream")
		response.InternalError(c, "failed to get stream")
		return
	}

	response.Success(c, stream.ToResponse())
}

// ListStreams lists streams with pagination.
func (h *HTTPHandler) ListStreams(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.ListStreamsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.streamService.ListStreams(ctx, &req)
	if err != nil {
		l.Error().Err(err).Msg("failed to list streams")
		response.InternalError(c, "failed to list streams")
		return
	}

	response.Success(c, result)
}

// StartStream transitions a stream to live.
func (h *HTTPHandler) StartStream(c *gin.Context) {
	streamID := c.Param("id")
	ctx := log.WithStream(c.Request.Context(), streamID)
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	stream, err := h.streamService.StartStream(ctx, streamID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStreamNotFound):
			response.NotFound(c, "stream not found")
		case errors.Is(err, service.ErrNotBroadcaster):
			response.Forbidden(c, "you are not the broadcaster of this stream")
		case errors.Is(err, service.ErrAlreadyLive):
			response.Conflict(c, "stream is already live")
		case errors.Is(err, service.ErrStreamEnded):
			response.Conflict(c, "stream has already ended")
		default:
			l.Error().Err(err).Msg("failed to start stream")
			response.InternalError(c, "failed to start stream")
		}
		return
	}

	response.Success(c, stream.ToResponse())
}

// StopStream transitions a stream to ended.
func (h *HTTPHandler) StopStream(c *gin.Context) {
	streamID := c.Param("id")
	ctx := log.WithStream(c.Request.Context(), streamID)
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	stream, err := h.streamService.StopStream(ctx, streamID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStreamNotFound):
			response.NotFound(c, "stream not found")
		case errors.Is(err, service.ErrNotBroadcaster):
			response.Forbidden(c, "you are not the broadcaster of this stream")
		case errors.Is(err, service.ErrNotLive):
			response.Conflict(c, "stream is not live")
		case errors.Is(err, service.ErrStreamEnded):
			response.Conflict(c, "stream has already ended")
		default:
			l.Error().Err(err).Msg("failed to stop stream")
			response.InternalError(c, "failed to stop stream")
		}
		return
	}

	response.Success(c, stream.ToResponse())
}
