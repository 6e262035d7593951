package httpapi

import (
	"net/http"
	"strconv"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/directory"
	"cargahub/messaging-service/internal/models"
	"cargahub/messaging-service/internal/session"
	"cargahub/messaging-service/internal/view"

	"github.com/gin-gonic/gin"
)

func (h *Handler) registerUserRoutes(r *gin.RouterGroup) {
	r.GET("/users", h.listUsers)
}

func (h *Handler) registerChatRoutes(r *gin.RouterGroup) {
	chats := r.Group("/chats")
	{
		chats.GET("", h.listChats)
		chats.POST("", h.createChat)
		chats.GET("/unread-count", h.chatUnreadCount)
		chats.GET("/:chatId", h.getChat)
		chats.DELETE("/:chatId", h.deleteChat)
		chats.PUT("/:chatId/archive", h.archiveChat)
		chats.PUT("/:chatId/unarchive", h.unarchiveChat)
		chats.PUT("/:chatId/read", h.markChatRead)
		chats.GET("/:chatId/messages", h.listMessages)
		chats.POST("/:chatId/messages", h.sendMessage)
	}
}

// listUsers serves the "start new chat" picker. The caller never sees
// themself.
func (h *Handler) listUsers(c *gin.Context) {
	userType := models.UserType(c.Query("type"))
	if userType != "" && !userType.Valid() {
		h.handleError(c, apperrors.Validation("unknown user type %q", userType))
		return
	}

	users, err := h.users.Users(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": directory.Filter(users, c.Query("q"), userType, session.UserID(c.Request.Context())),
	})
}

func (h *Handler) listChats(c *gin.Context) {
	filter, err := view.ParseChatFilter(c.Query("filter"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	ctx := c.Request.Context()
	chats, err := h.chats.Chats(ctx)
	if err != nil {
		h.handleError(c, err)
		return
	}

	userID := session.UserID(ctx)
	visible := view.SortChats(view.FilterChats(chats, userID, c.Query("search"), filter))
	c.JSON(http.StatusOK, gin.H{
		"chats": view.Summaries(visible, userID, h.opts.Now(), h.opts.Location, h.opts.Locale),
	})
}

type createChatRequest struct {
	OtherUserID string `json:"other_user_id" binding:"required"`
	CargoID     string `json:"cargo_id"`
}

func (h *Handler) createChat(c *gin.Context) {
	var req createChatRequest
	if !h.bindJSON(c, &req) {
		return
	}

	chat, err := h.chats.Create(c.Request.Context(), req.OtherUserID, req.CargoID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, chat)
}

func (h *Handler) chatUnreadCount(c *gin.Context) {
	count, err := h.chats.UnreadCount(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) getChat(c *gin.Context) {
	chat, err := h.chats.Get(c.Request.Context(), c.Param("chatId"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (h *Handler) deleteChat(c *gin.Context) {
	if err := h.chats.Delete(c.Request.Context(), c.Param("chatId")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) archiveChat(c *gin.Context) {
	if err := h.chats.Archive(c.Request.Context(), c.Param("chatId")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) unarchiveChat(c *gin.Context) {
	if err := h.chats.Unarchive(c.Request.Context(), c.Param("chatId")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) markChatRead(c *gin.Context) {
	count, err := h.chats.MarkRead(c.Request.Context(), c.Param("chatId"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": count})
}

// listMessages returns a page of messages, or date groups of that page when
// grouped=true.
func (h *Handler) listMessages(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.handleError(c, apperrors.Validation("limit %q is not a number", raw))
			return
		}
		limit = parsed
	}

	messages, err := h.chats.Messages(c.Request.Context(), c.Param("chatId"), limit, c.Query("before"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	if grouped, _ := strconv.ParseBool(c.Query("grouped")); grouped {
		flat := make([]models.Message, len(messages))
		for i, m := range messages {
			flat[i] = *m
		}
		c.JSON(http.StatusOK, gin.H{"groups": view.GroupMessagesByDate(flat, h.opts.Location)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type sendMessageRequest struct {
	Content     string              `json:"content"`
	Attachments []models.Attachment `json:"attachments"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	msg, err := h.chats.Send(c.Request.Context(), c.Param("chatId"), req.Content, req.Attachments)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
