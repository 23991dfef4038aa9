package handlers

import (
	"strconv"

	"hahu_backend/internal/http/middleware"
	"hahu_backend/internal/repository"
	"hahu_backend/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Store repository.Store
	*service.Services
}

func NewHandler(store repository.Store, services *service.Services) *Handler {
	return &Handler{Store: store, Services: services}
}

// getUserID returns the authenticated user id set by middleware.JWT.
func getUserID(c *gin.Context) (int64, bool) {
	return middleware.UserID(c)
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// limitQuery parses ?limit=, clamping it to [1, max].
func limitQuery(c *gin.Context, def, max int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
