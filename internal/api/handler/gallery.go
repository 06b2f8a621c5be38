package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/almostcrackd/captionboard/internal/domain"
	"github.com/almostcrackd/captionboard/internal/service"
)

// GalleryHandler handles gallery browsing endpoints.
type GalleryHandler struct {
	galleryService *service.GalleryService
}

// NewGalleryHandler creates a new gallery handler.
// Parameters:
//   - galleryService: gallery service instance.
//
// Returns:
//   - *GalleryHandler: initialized handler.
func NewGalleryHandler(galleryService *service.GalleryService) *GalleryHandler {
	return &GalleryHandler{
		galleryService: galleryService,
	}
}

// GetPage handles GET /api/v1/gallery.
// Query parameters: page, page_size, sort (likes or captions).
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *GalleryHandler) GetPage(c *gin.Context) {
	req := service.PageRequest{Page: 1}

	if page := c.Query("page"); page != "" {
		if n, err := strconv.Atoi(page); err == nil {
			req.Page = n
		}
	}
	if size := c.Query("page_size"); size != "" {
		if n, err := strconv.Atoi(size); err == nil {
			req.PageSize = n
		}
	}

	switch sort := c.Query("sort"); sort {
	case "":
		// Service default applies.
	case string(domain.GallerySortLikes), string(domain.GallerySortCaptions):
		req.Sort = domain.GallerySort(sort)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid sort: use likes or captions",
		})
		return
	}

	page, err := h.galleryService.Page(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch gallery: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, page)
}
