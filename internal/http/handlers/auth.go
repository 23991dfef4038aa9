package handlers

import (
	"net/http"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Signup(c *gin.Context) {
	var req service.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	ctx := c.Request.Context()
	profile, err := h.Auth.Signup(ctx, req)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := service.GenerateJWT(profile.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	h.Audit.LogWithRequest(ctx, profile.ID, domain.AuditActionSignup, domain.AuditCategoryAuth,
		c.ClientIP(), c.Request.UserAgent(), map[string]interface{}{"referred": profile.HasReferrer()})

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  profile,
	})
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	ctx := c.Request.Context()
	res, err := h.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	h.Audit.LogWithRequest(ctx, res.Profile.ID, domain.AuditActionLogin, domain.AuditCategoryAuth,
		c.ClientIP(), c.Request.UserAgent(), nil)
	if res.DailyBonus > 0 {
		h.Audit.Log(ctx, res.Profile.ID, domain.AuditActionDailyBonus, domain.AuditCategoryPoints, map[string]interface{}{
			"points": res.DailyBonus,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"token":       res.Token,
		"user":        res.Profile,
		"daily_bonus": res.DailyBonus,
	})
}
