package handler

import (
	"net/http"

	"github.com/flocknet/flock-backend/internal/common"
	"github.com/flocknet/flock-backend/internal/middleware"
	"github.com/flocknet/flock-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// MediaHandler handles media upload endpoints
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// Upload handles POST /media. The form carries the file plus a "kind"
// field (image, gif or video); the response URL goes into the message
// payload on send.
func (h *MediaHandler) Upload(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "File is required", nil)
		return
	}
	kind := c.DefaultPostForm("kind", "image")

	result, err := h.mediaService.Upload(c.Request.Context(), userID, kind, file)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.Created(c, result)
}

// Delete handles DELETE /media
func (h *MediaHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "key is required", nil)
		return
	}

	if err := h.mediaService.Delete(c.Request.Context(), req.Key); err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"deleted": true})
}
