package httpapi

import (
	"net/http"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/models"
	"cargahub/messaging-service/internal/view"

	"github.com/gin-gonic/gin"
)

func (h *Handler) registerNotificationRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.listNotifications)
		notifications.POST("", h.addNotification)
		notifications.GET("/unread-count", h.notificationUnreadCount)
		notifications.PUT("/read-all", h.markAllNotificationsRead)
		notifications.PUT("/:notificationId/read", h.markNotificationRead)
		notifications.DELETE("/:notificationId", h.deleteNotification)
	}

	settings := r.Group("/settings")
	{
		settings.GET("/notifications", h.getSettings)
		settings.PUT("/notifications", h.updateSettings)
	}
}

type notificationRow struct {
	*models.Notification
	Age string `json:"age"`
}

// listNotifications narrows the feed by type and/or priority when asked.
func (h *Handler) listNotifications(c *gin.Context) {
	ctx := c.Request.Context()
	nt := models.NotificationType(c.Query("type"))
	priority := models.Priority(c.Query("priority"))

	var (
		feed []*models.Notification
		err  error
	)
	switch {
	case nt != "":
		feed, err = h.notifications.ByType(ctx, nt)
	case priority != "":
		feed, err = h.notifications.ByPriority(ctx, priority)
	default:
		feed, err = h.notifications.List(ctx)
	}
	if err != nil {
		h.handleError(c, err)
		return
	}
	if nt != "" && priority != "" {
		if !priority.Valid() {
			h.handleError(c, apperrors.Validation("unknown priority %q", priority))
			return
		}
		kept := feed[:0]
		for _, n := range feed {
			if n.Priority == priority {
				kept = append(kept, n)
			}
		}
		feed = kept
	}

	unread, err := h.notifications.UnreadCount(ctx)
	if err != nil {
		h.handleError(c, err)
		return
	}

	now := h.opts.Now()
	rows := make([]notificationRow, len(feed))
	for i, n := range feed {
		rows[i] = notificationRow{Notification: n, Age: view.FormatRelative(n.Timestamp, now)}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": rows, "unread": unread})
}

func (h *Handler) addNotification(c *gin.Context) {
	var draft models.NotificationDraft
	if !h.bindJSON(c, &draft) {
		return
	}

	id, err := h.notifications.Add(c.Request.Context(), draft)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) notificationUnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) markAllNotificationsRead(c *gin.Context) {
	count, err := h.notifications.MarkAllAsRead(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": count})
}

func (h *Handler) markNotificationRead(c *gin.Context) {
	if err := h.notifications.MarkAsRead(c.Request.Context(), c.Param("notificationId")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteNotification(c *gin.Context) {
	if err := h.notifications.Delete(c.Request.Context(), c.Param("notificationId")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getSettings(c *gin.Context) {
	prefs, err := h.notifications.Settings(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) updateSettings(c *gin.Context) {
	prefs := models.DefaultNotificationSettings()
	if !h.bindJSON(c, &prefs) {
		return
	}

	if err := h.notifications.UpdateSettings(c.Request.Context(), prefs); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}
