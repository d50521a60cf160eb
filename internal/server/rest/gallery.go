package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listGallery(c *gin.Context) {
	images, err := h.Gallery.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": images})
}

func (h *Handler) uploadGallery(c *gin.Context) {
	uploads, closeAll, err := openStaged(stagedFiles(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer closeAll()

	if len(uploads) == 0 {
		badRequest(c, "at least one image is required")
		return
	}

	images, err := h.Gallery.Upload(c.Request.Context(), uploads)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"response": images})
}

func (h *Handler) deleteGallery(c *gin.Context) {
	if err := h.Gallery.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "image deleted"})
}

func (h *Handler) healthz(c *gin.Context) {
	for _, check := range h.Health {
		if err := check(c.Request.Context()); err != nil {
			h.Logger.Warn(c.Request.Context(), "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
