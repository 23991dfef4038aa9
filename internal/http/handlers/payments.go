package handlers

import (
	"net/http"

	"hahu_backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CompletePaymentRequest struct {
	LevelID int64 `json:"level_id" binding:"required"`
}

// CompletePayment is the payment collaborator's callback for a confirmed
// purchase. Retries of a processed payment answer 200 with already_unlocked;
// an out-of-order purchase answers 409 with the reason.
func (h *Handler) CompletePayment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req CompletePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.LevelID <= 0 {
		badRequest(c, "level_id is required")
		return
	}

	result, err := h.Payments.CompletePayment(c.Request.Context(), userID, req.LevelID)
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	if result.Status == domain.UnlockStatusRejectedPrerequisite {
		status = http.StatusConflict
	}
	c.JSON(status, result)
}
