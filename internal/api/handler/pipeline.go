package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/almostcrackd/captionboard/internal/api/middleware"
	"github.com/almostcrackd/captionboard/internal/service"
)

// PipelineHandler handles the upload/caption pipeline endpoints.
type PipelineHandler struct {
	pipelineService *service.PipelineService
}

// NewPipelineHandler creates a new pipeline handler.
// Parameters:
//   - pipelineService: pipeline service instance.
//
// Returns:
//   - *PipelineHandler: initialized handler.
func NewPipelineHandler(pipelineService *service.PipelineService) *PipelineHandler {
	return &PipelineHandler{
		pipelineService: pipelineService,
	}
}

type presignRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// GeneratePresignedURL handles POST /pipeline/generate-presigned-url.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *PipelineHandler) GeneratePresignedURL(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request: " + err.Error(),
		})
		return
	}

	slot, err := h.pipelineService.CreateUploadSlot(c.Request.Context(), req.ContentType)
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "unsupported content type") {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"message": "Failed to create upload slot: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, slot)
}

type registerRequest struct {
	ImageURL    string `json:"imageUrl" binding:"required"`
	IsCommonUse bool   `json:"isCommonUse"`
}

// UploadImageFromURL handles POST /pipeline/upload-image-from-url.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *PipelineHandler) UploadImageFromURL(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request: " + err.Error(),
		})
		return
	}

	session := middleware.GetSession(c)
	img, err := h.pipelineService.RegisterImage(c.Request.Context(), session, req.ImageURL, req.IsCommonUse)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to register image: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imageId": img.ID,
	})
}

type generateRequest struct {
	ImageID string `json:"imageId" binding:"required"`
}

// GenerateCaptions handles POST /pipeline/generate-captions.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *PipelineHandler) GenerateCaptions(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request: " + err.Error(),
		})
		return
	}

	session := middleware.GetSession(c)
	captions, err := h.pipelineService.GenerateCaptions(c.Request.Context(), session, req.ImageID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to generate captions: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, captions)
}
