package handlers

import (
	"net/http"

	"hahu_backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// GetReferralCode returns the caller's referral code.
func (h *Handler) GetReferralCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	profile, err := h.Store.Profiles().GetByID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": profile.ReferralCode})
}

// GetReferralStats returns counters and the direct referrals of the caller.
func (h *Handler) GetReferralStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	ctx := c.Request.Context()
	stats, err := h.Referral.Stats(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	referrals, err := h.Referral.Referrals(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if referrals == nil {
		referrals = []domain.Referral{}
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":     stats,
		"referrals": referrals,
	})
}

type ApplyReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *Handler) ApplyReferralCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req ApplyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "code is required")
		return
	}

	ctx := c.Request.Context()
	referrer, err := h.Referral.ApplyReferralCode(ctx, userID, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}

	h.Audit.Log(ctx, userID, domain.AuditActionReferralApply, domain.AuditCategoryReferral, map[string]interface{}{
		"referrer_id": referrer.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"referrer": gin.H{"id": referrer.ID, "name": referrer.FullName},
	})
}
