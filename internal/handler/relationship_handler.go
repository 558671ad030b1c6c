package handler

import (
	"net/http"

	"github.com/flocknet/flock-backend/internal/common"
	"github.com/flocknet/flock-backend/internal/middleware"
	"github.com/flocknet/flock-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// RelationshipHandler handles follow/block/mute HTTP requests
type RelationshipHandler struct {
	service *service.RelationshipService
}

// NewRelationshipHandler creates a new RelationshipHandler
func NewRelationshipHandler(service *service.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{service: service}
}

// Follow handles POST /users/:id/follow
func (h *RelationshipHandler) Follow(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if err := h.service.Follow(userID, c.Param("id")); err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"following": true})
}

// Unfollow handles DELETE /users/:id/follow
func (h *RelationshipHandler) Unfollow(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if err := h.service.Unfollow(userID, c.Param("id")); err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"following": false})
}

// Block handles POST /users/:id/block
func (h *RelationshipHandler) Block(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if err := h.service.Block(c.Request.Context(), userID, c.Param("id")); err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"blocked": true})
}

// Unblock handles DELETE /users/:id/block
func (h *RelationshipHandler) Unblock(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if err := h.service.Unblock(c.Request.Context(), userID, c.Param("id")); err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"blocked": false})
}

// Mute handles POST /users/:id/mute
func (h *RelationshipHandler) Mute(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if err := h.service.Mute(c.Request.Context(), userID, c.Param("id")); err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"muted": true})
}

// Unmute handles DELETE /users/:id/mute
func (h *RelationshipHandler) Unmute(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if err := h.service.Unmute(c.Request.Context(), userID, c.Param("id")); err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"muted": false})
}
