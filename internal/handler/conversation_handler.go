package handler

import (
	"net/http"
	"strconv"

	"github.com/flocknet/flock-backend/internal/common"
	"github.com/flocknet/flock-backend/internal/domain"
	"github.com/flocknet/flock-backend/internal/middleware"
	"github.com/flocknet/flock-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ConversationHandler handles DM conversation HTTP requests
type ConversationHandler struct {
	service *service.ConversationService
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(service *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// openConversationRequest is the get-or-create payload
type openConversationRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// OpenConversation handles POST /conversations
func (h *ConversationHandler) OpenConversation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req openConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	conv, err := h.service.GetOrCreateConversation(userID, req.UserID)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, conv)
}

// ListConversations handles GET /conversations
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	page, perPage := pageParams(c)
	views, total, err := h.service.ListConversations(c.Request.Context(), userID, page, perPage)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.SuccessWithMeta(c, views, common.NewMeta(page, perPage, total))
}

// ListMessages handles GET /conversations/:id/messages
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	page, perPage := pageParams(c)
	views, total, err := h.service.ListMessages(c.Param("id"), userID, page, perPage)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.SuccessWithMeta(c, views, common.NewMeta(page, perPage, total))
}

// SendMessage handles POST /conversations/:id/messages
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	view, err := h.service.SendMessage(c.Param("id"), userID, &req)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.Created(c, view)
}

// MarkRead handles POST /conversations/:id/read
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if err := h.service.MarkRead(c.Param("id"), userID); err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"read": true})
}

// UnreadCount handles GET /conversations/unread-count
func (h *ConversationHandler) UnreadCount(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	count, err := h.service.UnreadTotal(userID)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"unread_count": count})
}

// React handles POST /messages/:id/reactions. Reacting is a toggle.
func (h *ConversationHandler) React(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req domain.ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	groups, err := h.service.React(c.Param("id"), userID, req.Emoji)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"reactions": groups})
}

// DeleteMessage handles DELETE /messages/:id
func (h *ConversationHandler) DeleteMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if err := h.service.SoftDelete(c.Param("id"), userID); err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"deleted": true})
}

// pageParams reads page/per_page query params with defaults. per_page
// is clamped here so the pagination meta always matches the query the
// service runs.
func pageParams(c *gin.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	perPage := 50
	if l, err := strconv.Atoi(c.Query("per_page")); err == nil && l > 0 {
		perPage = l
		if perPage > 100 {
			perPage = 100
		}
	}
	return page, perPage
}
