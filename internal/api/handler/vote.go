package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/almostcrackd/captionboard/internal/api/middleware"
	"github.com/almostcrackd/captionboard/internal/service"
)

// VoteHandler handles caption voting endpoints.
type VoteHandler struct {
	voteService *service.VoteService
}

// NewVoteHandler creates a new vote handler.
// Parameters:
//   - voteService: vote service instance.
//
// Returns:
//   - *VoteHandler: initialized handler.
func NewVoteHandler(voteService *service.VoteService) *VoteHandler {
	return &VoteHandler{
		voteService: voteService,
	}
}

type voteRequest struct {
	Value int `json:"value" binding:"required"`
}

// SubmitVote handles POST /api/v1/captions/:id/votes.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *VoteHandler) SubmitVote(c *gin.Context) {
	captionID := c.Param("id")

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request: " + err.Error(),
		})
		return
	}

	session := middleware.GetSession(c)
	result, err := h.voteService.Apply(c.Request.Context(), session, captionID, req.Value)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case strings.Contains(err.Error(), "invalid vote value"):
			status = http.StatusBadRequest
		case strings.Contains(err.Error(), "unknown caption"):
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"message": "Failed to record vote: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetVoteState handles GET /api/v1/captions/:id/votes.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *VoteHandler) GetVoteState(c *gin.Context) {
	captionID := c.Param("id")

	session := middleware.GetSession(c)
	result, err := h.voteService.Seed(c.Request.Context(), session, captionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch vote state: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
