// Package httpapi serves the chat and notification stores over HTTP/JSON.
// Callers assert the acting user with the X-User-ID header.
package httpapi

import (
	"net/http"
	"time"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/directory"
	"cargahub/messaging-service/internal/metrics"
	"cargahub/messaging-service/internal/service"
	"cargahub/messaging-service/internal/session"
	"cargahub/messaging-service/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const UserHeader = "X-User-ID"

type Options struct {
	Now      func() time.Time
	Location *time.Location
	Locale   view.Locale
}

type Handler struct {
	chats         service.ChatService
	notifications service.NotificationService
	users         directory.Provider
	logger        *logrus.Logger
	opts          Options
}

func NewHandler(chats service.ChatService, notifications service.NotificationService, users directory.Provider, logger *logrus.Logger, opts Options) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Locale.TimeLayout == "" {
		opts.Locale = view.English
	}
	return &Handler{
		chats:         chats,
		notifications: notifications,
		users:         users,
		logger:        logger,
		opts:          opts,
	}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")
	api.Use(requireUser())
	h.registerUserRoutes(api)
	h.registerChatRoutes(api)
	h.registerNotificationRoutes(api)

	return r
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"user_id":  session.UserID(c.Request.Context()),
		}).Debug("HTTP request")
	}
}

// requireUser moves the X-User-ID header into the request context.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  "UNAUTHORIZED",
				"error": "missing " + UserHeader + " header",
			})
			return
		}
		c.Request = c.Request.WithContext(session.WithUser(c.Request.Context(), userID))
		c.Next()
	}
}

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeValidationFailed:
		return http.StatusBadRequest
	case apperrors.CodePermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	message := "internal error"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && code != apperrors.CodeInternal {
		message = appErr.Message
		h.logger.WithError(err).WithField("path", c.FullPath()).Warn("Service error")
	} else {
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("Internal server error")
	}

	c.AbortWithStatusJSON(statusFor(code), gin.H{"code": code, "error": message})
}

func (h *Handler) bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.handleError(c, apperrors.Validation("invalid request body: %s", err.Error()))
		return false
	}
	return true
}
