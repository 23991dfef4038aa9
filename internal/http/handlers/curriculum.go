package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListLevels is the public level catalogue.
func (h *Handler) ListLevels(c *gin.Context) {
	levels, err := h.Curriculum.Levels(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"levels": levels})
}

// MyCurriculum returns every level with the caller's lock state.
func (h *Handler) MyCurriculum(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	views, err := h.Curriculum.Overview(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"levels": views})
}

func (h *Handler) GetSlide(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	slideID, ok := idParam(c, "id")
	if !ok {
		badRequest(c, "invalid slide id")
		return
	}

	view, err := h.Curriculum.OpenSlide(c.Request.Context(), userID, slideID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) CompleteSlide(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	slideID, ok := idParam(c, "id")
	if !ok {
		badRequest(c, "invalid slide id")
		return
	}

	view, err := h.Curriculum.CompleteSlide(c.Request.Context(), userID, slideID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
