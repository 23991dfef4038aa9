package handlers

import (
	"net/http"

	"hahu_backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns the ranked subscribed profiles
func (h *Handler) GetLeaderboard(c *gin.Context) {
	top, err := h.Leaderboard.Top(c.Request.Context(), limitQuery(c, 100, 500))
	if err != nil {
		writeError(c, err)
		return
	}
	if top == nil {
		top = []domain.LeaderboardEntry{}
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": top})
}

// GetMyRank returns the caller's rank; 0 when not subscribed
func (h *Handler) GetMyRank(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	entry, err := h.Leaderboard.Rank(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rank":   entry.Rank,
		"points": entry.Points,
	})
}
