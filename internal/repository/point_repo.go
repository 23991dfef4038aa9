package repository

import (
	"context"
	"errors"
	"time"

	"hahu_backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type PointRepository struct {
	db DBTX
}

func NewPointRepository(db DBTX) *PointRepository {
	return &PointRepository{db: db}
}

// Insert appends a ledger entry
func (r *PointRepository) Insert(ctx context.Context, e *domain.PointEntry) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO point_entries (profile_id, points, reason, one_time)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		e.ProfileID, e.Points, e.Reason, e.OneTime,
	).Scan(&e.ID, &e.CreatedAt)
	return missingParent(err)
}

func (r *PointRepository) InsertOnce(ctx context.Context, e *domain.PointEntry) (bool, error) {
	e.OneTime = true
	err := r.db.QueryRow(ctx,
		`INSERT INTO point_entries (profile_id, points, reason, one_time)
		 VALUES ($1, $2, $3, TRUE)
		 ON CONFLICT (profile_id, reason) WHERE one_time DO NOTHING
		 RETURNING id, created_at`,
		e.ProfileID, e.Points, e.Reason,
	).Scan(&e.ID, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, missingParent(err)
	}
	return true, nil
}

func (r *PointRepository) HasReason(ctx context.Context, profileID int64, reason string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM point_entries WHERE profile_id = $1 AND reason = $2)`,
		profileID, reason,
	).Scan(&exists)
	return exists, err
}

func (r *PointRepository) CountByPrefixSince(ctx context.Context, profileID int64, prefix string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM point_entries
		 WHERE profile_id = $1 AND starts_with(reason, $2) AND created_at >= $3`,
		profileID, prefix, since,
	).Scan(&n)
	return n, err
}

func (r *PointRepository) SumByPrefix(ctx context.Context, profileID int64, prefix string) (int64, error) {
	var sum int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM point_entries
		 WHERE profile_id = $1 AND starts_with(reason, $2)`,
		profileID, prefix,
	).Scan(&sum)
	return sum, err
}

func (r *PointRepository) Sum(ctx context.Context, profileID int64) (int64, error) {
	var sum int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM point_entries WHERE profile_id = $1`,
		profileID,
	).Scan(&sum)
	return sum, err
}

// ListByProfile returns the newest entries first
func (r *PointRepository) ListByProfile(ctx context.Context, profileID int64, limit int) ([]*domain.PointEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, profile_id, points, reason, one_time, created_at
		 FROM point_entries
		 WHERE profile_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		profileID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.PointEntry
	for rows.Next() {
		var e domain.PointEntry
		if err := rows.Scan(&e.ID, &e.ProfileID, &e.Points, &e.Reason, &e.OneTime, &e.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &e)
	}
	return res, rows.Err()
}
