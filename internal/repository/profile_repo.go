package repository

import (
	"context"
	"time"

	"hahu_backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

const profileColumns = `id, username, password_hash, full_name, referral_code, aura_points,
	is_subscribed, level_name, related_level_id, last_login_bonus_date, referred_by, created_at`

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(
		&p.ID,
		&p.Username,
		&p.PasswordHash,
		&p.FullName,
		&p.ReferralCode,
		&p.AuraPoints,
		&p.IsSubscribed,
		&p.LevelName,
		&p.RelatedLevelID,
		&p.LastLoginBonusDate,
		&p.ReferredBy,
		&p.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Create inserts a new profile. Username and referral code collisions are
// reported as domain.ErrUsernameTaken and ErrReferralCodeTaken.
func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	if p.LevelName == "" {
		p.LevelName = "Beginner"
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO profiles (username, password_hash, full_name, referral_code, level_name, referred_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, aura_points, is_subscribed, created_at`,
		p.Username, p.PasswordHash, p.FullName, p.ReferralCode, p.LevelName, p.ReferredBy,
	).Scan(&p.ID, &p.AuraPoints, &p.IsSubscribed, &p.CreatedAt)
	if constraint, ok := uniqueViolation(err); ok {
		if constraint == "profiles_referral_code_key" {
			return ErrReferralCodeTaken
		}
		return domain.ErrUsernameTaken
	}
	return err
}

func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

func (r *ProfileRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1 FOR UPDATE`, id))
}

func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE username = $1`, username))
}

func (r *ProfileRepository) GetByReferralCode(ctx context.Context, code string) (*domain.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE referral_code = $1`, code))
}

func (r *ProfileRepository) SetReferrer(ctx context.Context, id, referrerID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE profiles SET referred_by = $1
		 WHERE id = $2 AND referred_by IS NULL AND id <> $1`,
		referrerID, id,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ProfileRepository) ListReferrals(ctx context.Context, referrerID int64) ([]domain.Referral, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, full_name, is_subscribed, created_at
		 FROM profiles
		 WHERE referred_by = $1
		 ORDER BY created_at DESC, id DESC`,
		referrerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Referral
	for rows.Next() {
		var ref domain.Referral
		if err := rows.Scan(&ref.ProfileID, &ref.FullName, &ref.IsSubscribed, &ref.JoinedAt); err != nil {
			return nil, err
		}
		res = append(res, ref)
	}
	return res, rows.Err()
}

// AddPoints adjusts the cached balance in place so concurrent writers never
// lose an update.
func (r *ProfileRepository) AddPoints(ctx context.Context, id, delta int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE profiles SET aura_points = aura_points + $1 WHERE id = $2`,
		delta, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) SetPoints(ctx context.Context, id, points int64) error {
	_, err := r.db.Exec(ctx, `UPDATE profiles SET aura_points = $1 WHERE id = $2`, points, id)
	return err
}

func (r *ProfileRepository) ClaimLoginBonusDay(ctx context.Context, id int64, day time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE profiles SET last_login_bonus_date = $1
		 WHERE id = $2 AND (last_login_bonus_date IS NULL OR last_login_bonus_date < $1)`,
		day, id,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ProfileRepository) Subscribe(ctx context.Context, id int64, levelName string, relatedLevelID *int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE profiles
		 SET is_subscribed = TRUE, level_name = $1, related_level_id = COALESCE($2, related_level_id)
		 WHERE id = $3`,
		levelName, relatedLevelID, id,
	)
	return err
}

// Leaderboard returns subscribed profiles ordered by points. Rank is left
// zero; ranking is applied by the caller. limit <= 0 returns everyone.
func (r *ProfileRepository) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	query := `SELECT id, username, full_name, aura_points
		 FROM profiles
		 WHERE is_subscribed
		 ORDER BY aura_points DESC, id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.ProfileID, &e.Username, &e.Name, &e.Points); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r *ProfileRepository) CountSubscribedAbove(ctx context.Context, points int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM profiles WHERE is_subscribed AND aura_points > $1`,
		points,
	).Scan(&n)
	return n, err
}

func (r *ProfileRepository) BalanceChecks(ctx context.Context) ([]domain.BalanceCheck, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.aura_points, COALESCE(SUM(e.points), 0)
		FROM profiles p
		LEFT JOIN point_entries e ON e.profile_id = p.id
		GROUP BY p.id, p.aura_points
		ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.BalanceCheck
	for rows.Next() {
		var c domain.BalanceCheck
		if err := rows.Scan(&c.ProfileID, &c.Cached, &c.LedgerSum); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}
