package handlers

import (
	"net/http"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AdminCreateLevel(c *gin.Context) {
	var req service.NewLevel
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name and order are required")
		return
	}

	ctx := c.Request.Context()
	level, err := h.Curriculum.CreateLevel(ctx, req)
	if err != nil {
		writeError(c, err)
		return
	}

	adminID, _ := getUserID(c)
	h.Audit.Log(ctx, adminID, domain.AuditActionAdminCreateLevel, domain.AuditCategoryAdmin, map[string]interface{}{
		"level_id": level.ID,
		"slug":     level.Slug,
	})
	c.JSON(http.StatusCreated, level)
}

func (h *Handler) AdminCreateModule(c *gin.Context) {
	levelID, ok := idParam(c, "id")
	if !ok {
		badRequest(c, "invalid level id")
		return
	}
	var req service.NewModule
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}

	ctx := c.Request.Context()
	module, err := h.Curriculum.CreateModule(ctx, levelID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	adminID, _ := getUserID(c)
	h.Audit.Log(ctx, adminID, domain.AuditActionAdminCreateModule, domain.AuditCategoryAdmin, map[string]interface{}{
		"level_id":  levelID,
		"module_id": module.ID,
	})
	c.JSON(http.StatusCreated, module)
}

func (h *Handler) AdminCreateSlide(c *gin.Context) {
	moduleID, ok := idParam(c, "id")
	if !ok {
		badRequest(c, "invalid module id")
		return
	}
	var req service.NewSlide
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title is required")
		return
	}

	ctx := c.Request.Context()
	slide, err := h.Curriculum.CreateSlide(ctx, moduleID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	adminID, _ := getUserID(c)
	h.Audit.Log(ctx, adminID, domain.AuditActionAdminCreateSlide, domain.AuditCategoryAdmin, map[string]interface{}{
		"module_id": moduleID,
		"slide_id":  slide.ID,
	})
	c.JSON(http.StatusCreated, slide)
}

// AdminReconcile runs the balance reconciliation immediately.
func (h *Handler) AdminReconcile(c *gin.Context) {
	ctx := c.Request.Context()
	repaired, err := h.Reconciler.Run(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	adminID, _ := getUserID(c)
	h.Audit.Log(ctx, adminID, domain.AuditActionAdminReconcile, domain.AuditCategoryAdmin, map[string]interface{}{
		"repaired": repaired,
	})
	c.JSON(http.StatusOK, gin.H{"repaired": repaired})
}
