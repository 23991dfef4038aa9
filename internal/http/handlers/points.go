package handlers

import (
	"net/http"

	"hahu_backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type AwardRequest struct {
	Points int64  `json:"points"`
	Reason string `json:"reason"`
}

// AwardPoints credits points earned in a mini-game or similar activity.
func (h *Handler) AwardPoints(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req AwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	ctx := c.Request.Context()
	entry, err := h.Ledger.AwardPoints(ctx, userID, req.Points, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	h.Audit.Log(ctx, userID, domain.AuditActionPointsAward, domain.AuditCategoryPoints, map[string]interface{}{
		"points": req.Points,
		"reason": entry.Reason,
	})

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}
