package memstore

import (
	"context"

	"hahu_backend/internal/domain"
)

type auditRepo struct {
	conn
}

func (r *auditRepo) Create(_ context.Context, log *domain.AuditLog) error {
	defer r.lock()()

	log.ID = r.db.t.nextID()
	log.CreatedAt = r.db.now()
	r.db.t.audit = append(r.db.t.audit, *log)
	return nil
}

func (r *auditRepo) GetByUserID(_ context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var res []*domain.AuditLog
	for i := len(r.db.t.audit) - 1; i >= 0 && len(res) < limit; i-- {
		if r.db.t.audit[i].UserID == userID {
			log := r.db.t.audit[i]
			res = append(res, &log)
		}
	}
	return res, nil
}
