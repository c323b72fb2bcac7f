package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/landonharris622-gif/Primal-live/internal/domain"
	"github.com/landonharris622-gif/Primal-live/internal/service"
	"github.com/landonharris622-gif/Primal-live/pkg/log"
	"github.com/landonharris622-gif/Primal-live/pkg/middleware"
	"github.com/landonharris622-gif/Primal-live/pkg/response"
)

// maxUploadSize caps thumbnail and VOD uploads.
const maxUploadSize = 512 << 20

// Handler handles HTTP requests.
type Handler struct {
	users          service.UserService
	streams        service.StreamService
	presence       service.PresenceService
	chat           service.ChatService
	vods           service.VodService
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	users service.UserService,
	streams service.StreamService,
	presence service.PresenceService,
	chat service.ChatService,
	vods service.VodService,
	authMiddleware *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		users:          users,
		streams:        streams,
		presence:       presence,
		chat:           chat,
		vods:           vods,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/refresh", h.RefreshToken)
			auth.POST("/logout", h.authMiddleware.RequireAuth(), h.Logout)
		}

		users := api.Group("/users")
		{
			users.GET("/me", h.authMiddleware.RequireAuth(), h.GetMe)
			users.GET("", h.authMiddleware.RequireAuth(), h.authMiddleware.RequireRole(domain.RoleAdmin), h.ListUsers)
			users.PUT("/:id/role", h.authMiddleware.RequireAuth(), h.authMiddleware.RequireRole(domain.RoleAdmin), h.UpdateRole)
		}

		streams := api.Group("/streams")
		{
			streams.GET("", h.ListLiveStreams)
			streams.GET("/all", h.authMiddleware.RequireAuth(), h.authMiddleware.RequireRole(domain.RoleAdmin), h.ListAllStreams)
			streams.GET("/:id", h.GetStream)
			streams.GET("/:id/chat", h.ChatHistory)

			streams.POST("", h.authMiddleware.RequireAuth(), h.authMiddleware.RequireRole(domain.RoleCreator, domain.RoleAdmin), h.CreateStream)
			streams.POST("/:id/start", h.authMiddleware.RequireAuth(), h.StartStream)
			streams.POST("/:id/end", h.authMiddleware.RequireAuth(), h.EndStream)
			streams.POST("/:id/force-end", h.authMiddleware.RequireAuth(), h.authMiddleware.RequireRole(domain.RoleAdmin), h.ForceEndStream)
			streams.POST("/:id/heartbeat", h.authMiddleware.OptionalAuth(), h.Heartbeat)
			streams.POST("/:id/chat", h.authMiddleware.RequireAuth(), h.SendChat)
			streams.POST("/:id/thumbnail", h.authMiddleware.RequireAuth(), h.UploadThumbnail)
			streams.POST("/:id/ingest", h.authMiddleware.RequireAuth(), h.ProvisionIngest)
		}

		vods := api.Group("/vods")
		{
			vods.GET("", h.ListVods)
			vods.POST("", h.authMiddleware.RequireAuth(), h.authMiddleware.RequireRole(domain.RoleCreator, domain.RoleAdmin), h.UploadVod)
		}
	}
}

// Register handles user registration.
func (h *Handler) Register(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid register request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.users.Register(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUser) {
			response.Conflict(c, "email or username already used")
			return
		}
		l.Error().Err(err).Msg("register failed")
		response.InternalError(c, "failed to register user")
		return
	}

	response.Created(c, result)
}

// Login handles user login.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.users.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		l.Error().Err(err).Msg("login failed")
		response.InternalError(c, "failed to log in")
		return
	}

	response.Success(c, result)
}

// RefreshToken exchanges a refresh token for new tokens.
func (h *Handler) RefreshToken(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.users.RefreshToken(ctx, &req)
	if err != nil {
		response.Unauthorized(c, "invalid refresh token")
		return
	}

	response.Success(c, result)
}

// Logout revokes the caller's tokens.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.users.Logout(ctx, middleware.GetUserID(c)); err != nil {
		response.InternalError(c, "failed to log out")
		return
	}

	response.Success(c, gin.H{"message": "logged out"})
}

// GetMe returns the caller's profile.
func (h *Handler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.users.GetUser(ctx, middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, "failed to load user")
		return
	}

	response.Success(c, result)
}

// ListUsers returns recently registered users. Admin only.
func (h *Handler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.users.ListUsers(ctx, 100)
	if err != nil {
		response.InternalError(c, "failed to list users")
		return
	}

	response.Success(c, result)
}

// UpdateRole changes a user's role. Admin only.
func (h *Handler) UpdateRole(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.users.UpdateRole(ctx, middleware.GetUserID(c), c.Param("id"), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			response.BadRequest(c, "invalid role")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			response.InternalError(c, "failed to update role")
		}
		return
	}

	response.Success(c, result)
}

// CreateStream registers a new stream for the caller.
func (h *Handler) CreateStream(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.streams.Create(ctx, middleware.GetUserID(c), middleware.GetUsername(c), &req)
	if err != nil {
		l.Error().Err(err).Msg("stream creation failed")
		response.InternalError(c, "failed to create stream")
		return
	}

	response.Created(c, result)
}

// ListLiveStreams returns the live stream directory.
func (h *Handler) ListLiveStreams(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.streams.ListLive(ctx)
	if err != nil {
		response.InternalError(c, "failed to list streams")
		return
	}

	response.Success(c, result)
}

// ListAllStreams returns recent streams regardless of state. Admin only.
func (h *Handler) ListAllStreams(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.streams.ListAll(ctx, 100)
	if err != nil {
		response.InternalError(c, "failed to list streams")
		return
	}

	response.Success(c, result)
}

// GetStream returns one stream.
func (h *Handler) GetStream(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.streams.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrStreamNotFound) {
			response.NotFound(c, "stream not found")
			return
		}
		response.InternalError(c, "failed to load stream")
		return
	}

	response.Success(c, result)
}

// StartStream marks a stream live. Creators may start their own
// streams, admins any stream.
func (h *Handler) StartStream(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.streams.Start(ctx, middleware.GetUserID(c), middleware.GetRole(c), c.Param("id"))
	if err != nil {
		h.streamError(c, err, "failed to start stream")
		return
	}

	response.Success(c, result)
}

// EndStream stops a stream. Creators may end their own streams,
// admins any stream.
func (h *Handler) EndStream(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.streams.End(ctx, middleware.GetUserID(c), middleware.GetRole(c), c.Param("id")); err != nil {
		h.streamError(c, err, "failed to end stream")
		return
	}

	response.Success(c, gin.H{"message": "stream ended"})
}

// ForceEndStream stops any stream. Admin only.
func (h *Handler) ForceEndStream(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.streams.ForceEnd(ctx, middleware.GetUserID(c), c.Param("id")); err != nil {
		h.streamError(c, err, "failed to end stream")
		return
	}

	response.Success(c, gin.H{"message": "stream ended"})
}

// Heartbeat records a viewer presence pulse.
func (h *Handler) Heartbeat(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.presence.Heartbeat(ctx, c.Param("id"), req.SessionID, middleware.GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStreamNotFound):
			response.NotFound(c, "stream not found")
		case errors.Is(err, service.ErrStreamNotLive):
			response.BadRequest(c, "stream is not live")
		default:
			response.InternalError(c, "failed to record heartbeat")
		}
		return
	}

	response.Success(c, result)
}

// ChatHistory returns a stream's chat messages.
func (h *Handler) ChatHistory(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.chat.History(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrStreamNotFound) {
			response.NotFound(c, "stream not found")
			return
		}
		response.InternalError(c, "failed to load chat history")
		return
	}

	response.Success(c, result)
}

// SendChat persists and broadcasts a chat message.
func (h *Handler) SendChat(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.SendChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.chat.Send(ctx, c.Param("id"), middleware.GetUserID(c), middleware.GetUsername(c), middleware.GetRole(c), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStreamNotFound):
			response.NotFound(c, "stream not found")
		case errors.Is(err, service.ErrStreamNotLive):
			response.BadRequest(c, "stream is not live")
		case errors.Is(err, service.ErrEmptyMessage):
			response.BadRequest(c, "message is empty")
		case errors.Is(err, service.ErrMessageTooLong):
			response.BadRequest(c, "message is too long")
		default:
			response.InternalError(c, "failed to send message")
		}
		return
	}

	response.Created(c, result)
}

// UploadThumbnail stores a stream thumbnail.
func (h *Handler) UploadThumbnail(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	file, header, err := h.formFile(c, "thumbnail")
	if err != nil {
		response.BadRequest(c, "thumbnail file is required")
		return
	}
	defer file.Close()

	result, err := h.streams.UploadThumbnail(ctx, middleware.GetUserID(c), middleware.GetRole(c), c.Param("id"), file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		l.Error().Err(err).Msg("thumbnail upload failed")
		h.streamError(c, err, "failed to upload thumbnail")
		return
	}

	response.Success(c, result)
}

// ProvisionIngest provisions RTMP ingest credentials for a stream.
func (h *Handler) ProvisionIngest(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	result, err := h.streams.ProvisionIngest(ctx, middleware.GetUserID(c), middleware.GetRole(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrIngestNotAvailable) {
			response.Error(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "rtmp ingest is not configured")
			return
		}
		l.Error().Err(err).Msg("ingest provisioning failed")
		h.streamError(c, err, "failed to provision ingest")
		return
	}

	response.Success(c, result)
}

// ListVods returns recent VODs.
func (h *Handler) ListVods(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.vods.List(ctx)
	if err != nil {
		response.InternalError(c, "failed to list vods")
		return
	}

	response.Success(c, result)
}

// UploadVod stores a recording and registers a VOD.
func (h *Handler) UploadVod(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	file, header, err := h.formFile(c, "file")
	if err != nil {
		response.BadRequest(c, "vod file is required")
		return
	}
	defer file.Close()

	result, err := h.vods.Upload(
		ctx,
		middleware.GetUserID(c),
		middleware.GetUsername(c),
		c.PostForm("title"),
		c.PostForm("streamId"),
		file,
		header.Size,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		l.Error().Err(err).Msg("vod upload failed")
		response.InternalError(c, "failed to upload vod")
		return
	}

	response.Created(c, result)
}

func (h *Handler) formFile(c *gin.Context, field string) (multipart.File, *multipart.FileHeader, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return file, header, nil
}

func (h *Handler) streamError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrStreamNotFound):
		response.NotFound(c, "stream not found")
	case errors.Is(err, service.ErrNotStreamOwner):
		response.Forbidden(c, "not the stream owner")
	default:
		response.InternalError(c, fallback)
	}
}
