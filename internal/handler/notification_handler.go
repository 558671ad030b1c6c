package handler

import (
	"net/http"

	"github.com/flocknet/flock-backend/internal/common"
	"github.com/flocknet/flock-backend/internal/middleware"
	"github.com/flocknet/flock-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List handles GET /notifications. ?filter=mentions restricts to the
// merged reply/mention category.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	mentionsOnly := c.Query("filter") == "mentions"
	page, perPage := pageParams(c)

	items, total, err := h.service.List(c.Request.Context(), userID, mentionsOnly, page, perPage)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.SuccessWithMeta(c, items, common.NewMeta(page, perPage, total))
}

// UnreadCount handles GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	summary, err := h.service.UnreadCount(userID)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, summary)
}

// MarkRead handles POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if err := h.service.MarkRead(userID, c.Param("id")); err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"read": true})
}

// MarkAllRead handles POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if err := h.service.MarkAllRead(userID); err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"read": true})
}
