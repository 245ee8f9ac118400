package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/udonggeum-storefront/internal/errors"
	"github.com/ikkim/udonggeum-storefront/internal/middleware"
	"github.com/ikkim/udonggeum-storefront/internal/storage"
)

const maxResolveRefs = 50

type MediaController struct {
	media *storage.MediaResolver
}

func NewMediaController(media *storage.MediaResolver) *MediaController {
	return &MediaController{
		media: media,
	}
}

type ResolveMediaRequest struct {
	Refs []string `json:"refs" binding:"required"`
}

// ResolveURLs turns stored media references into loadable URLs
// POST /api/v1/media/resolve
func (ctrl *MediaController) ResolveURLs(c *gin.Context) {
	var req ResolveMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid media resolve request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "refs is required")
		return
	}
	if len(req.Refs) > maxResolveRefs {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Too many references")
		return
	}

	urls := make(map[string]string, len(req.Refs))
	for _, ref := range req.Refs {
		// Bare GUIDs are storage handles, not files.
		if ref == "" || storage.IsOpaqueStorageRef(ref) {
			continue
		}
		urls[ref] = ctrl.media.ResolveURL(c.Request.Context(), ref)
	}

	c.JSON(http.StatusOK, gin.H{"urls": urls})
}
