package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	ctx := c.Request.Context()
	profile, err := h.Store.Profiles().GetByID(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	ledger, err := h.Ledger.Balance(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	rank, err := h.Leaderboard.Rank(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": profile,
		"balance": gin.H{
			"cached": profile.AuraPoints,
			"ledger": ledger,
		},
		"rank": rank.Rank,
	})
}

// MyPoints returns the caller's ledger, newest first.
func (h *Handler) MyPoints(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	entries, err := h.Ledger.History(c.Request.Context(), userID, limitQuery(c, 50, 500))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
