package service

import (
	"context"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/logger"
	"hahu_backend/internal/repository"
)

// AuditService handles audit logging. Failures are logged, never returned.
type AuditService struct {
	store repository.Store
}

func NewAuditService(store repository.Store) *AuditService {
	return &AuditService{store: store}
}

// Log creates a new audit log entry
func (s *AuditService) Log(ctx context.Context, userID int64, action, category string, details map[string]interface{}) {
	s.LogWithRequest(ctx, userID, action, category, "", "", details)
}

// LogWithRequest creates an audit log with request info (IP, User-Agent)
func (s *AuditService) LogWithRequest(ctx context.Context, userID int64, action, category, ip, userAgent string, details map[string]interface{}) {
	log := &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        ip,
		UserAgent: userAgent,
	}

	if err := s.store.Audit().Create(ctx, log); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

// LogPurchase records the outcome of a level purchase
func (s *AuditService) LogPurchase(ctx context.Context, userID int64, result *domain.PaymentResult) {
	details := map[string]interface{}{
		"level_id": result.LevelID,
		"status":   string(result.Status),
	}
	if result.Reason != "" {
		details["reason"] = result.Reason
	}
	var awarded int64
	for _, b := range result.Awarded() {
		awarded += b.Points
	}
	details["bonus_points"] = awarded

	s.Log(ctx, userID, domain.AuditActionLevelPurchase, domain.AuditCategoryPayment, details)
}

// Recent returns the latest audit entries for a user
func (s *AuditService) Recent(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	return s.store.Audit().GetByUserID(ctx, userID, limit)
}
