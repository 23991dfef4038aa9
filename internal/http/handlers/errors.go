package handlers

import (
	"errors"
	"net/http"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

type apiError struct {
	Status int
	Code   string
}

var errorTable = []struct {
	err error
	api apiError
}{
	{domain.ErrNotFound, apiError{http.StatusNotFound, "not_found"}},
	{domain.ErrInvalidAmount, apiError{http.StatusBadRequest, "invalid_amount"}},
	{domain.ErrInvalidInput, apiError{http.StatusBadRequest, "invalid_input"}},
	{domain.ErrReservedReason, apiError{http.StatusBadRequest, "reserved_reason"}},
	{domain.ErrInvalidCode, apiError{http.StatusBadRequest, "invalid_code"}},
	{domain.ErrSelfReferral, apiError{http.StatusBadRequest, "self_referral"}},
	{domain.ErrBadCredentials, apiError{http.StatusUnauthorized, "bad_credentials"}},
	{domain.ErrLevelLocked, apiError{http.StatusForbidden, "level_locked"}},
	{domain.ErrAlreadyReferred, apiError{http.StatusConflict, "already_referred"}},
	{domain.ErrReferralCycle, apiError{http.StatusConflict, "referral_cycle"}},
	{domain.ErrUsernameTaken, apiError{http.StatusConflict, "username_taken"}},
	{domain.ErrDuplicateOrder, apiError{http.StatusConflict, "duplicate_order"}},
	{domain.ErrAlreadyAwarded, apiError{http.StatusConflict, "already_awarded"}},
	{domain.ErrLockBusy, apiError{http.StatusConflict, "busy"}},
}

func classify(err error) apiError {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.api
		}
	}
	return apiError{http.StatusInternalServerError, "internal"}
}

// writeError maps domain errors to a status and a stable code. Internal
// errors are logged and hidden from the client.
func writeError(c *gin.Context, err error) {
	api := classify(err)
	if api.Status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("request failed", "error", err)
		c.JSON(api.Status, gin.H{"error": "internal error", "code": api.Code})
		return
	}
	body := gin.H{"error": err.Error(), "code": api.Code}
	if errors.Is(err, domain.ErrLockBusy) {
		c.Header("Retry-After", "1")
	}
	c.JSON(api.Status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "bad_request"})
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}
