package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hahu_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrReferralCodeTaken is returned by ProfileStore.Create when the generated
// referral code collides with an existing one. Callers retry with a new code.
var ErrReferralCodeTaken = errors.New("referral code already taken")

// ProfileStore persists profiles, their cached balance and the referral edge.
type ProfileStore interface {
	Create(ctx context.Context, p *domain.Profile) error
	GetByID(ctx context.Context, id int64) (*domain.Profile, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Profile, error)
	GetByUsername(ctx context.Context, username string) (*domain.Profile, error)
	GetByReferralCode(ctx context.Context, code string) (*domain.Profile, error)
	// SetReferrer sets referred_by only when it is still empty.
	SetReferrer(ctx context.Context, id, referrerID int64) (bool, error)
	ListReferrals(ctx context.Context, referrerID int64) ([]domain.Referral, error)
	AddPoints(ctx context.Context, id, delta int64) error
	SetPoints(ctx context.Context, id, points int64) error
	// ClaimLoginBonusDay moves last_login_bonus_date to day if it is before day.
	ClaimLoginBonusDay(ctx context.Context, id int64, day time.Time) (bool, error)
	Subscribe(ctx context.Context, id int64, levelName string, relatedLevelID *int64) error
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	CountSubscribedAbove(ctx context.Context, points int64) (int, error)
	BalanceChecks(ctx context.Context) ([]domain.BalanceCheck, error)
}

// PointStore is the append-only points ledger.
type PointStore interface {
	Insert(ctx context.Context, e *domain.PointEntry) error
	// InsertOnce inserts a one-time entry and reports false when the
	// (profile, reason) pair already exists.
	InsertOnce(ctx context.Context, e *domain.PointEntry) (bool, error)
	HasReason(ctx context.Context, profileID int64, reason string) (bool, error)
	CountByPrefixSince(ctx context.Context, profileID int64, prefix string, since time.Time) (int, error)
	SumByPrefix(ctx context.Context, profileID int64, prefix string) (int64, error)
	Sum(ctx context.Context, profileID int64) (int64, error)
	ListByProfile(ctx context.Context, profileID int64, limit int) ([]*domain.PointEntry, error)
}

// CurriculumStore holds the level/module/slide catalogue and per-user progress.
type CurriculumStore interface {
	CreateLevel(ctx context.Context, l *domain.Level) error
	GetLevel(ctx context.Context, id int64) (*domain.Level, error)
	ListLevels(ctx context.Context) ([]*domain.Level, error)
	CreateModule(ctx context.Context, m *domain.Module) error
	GetModule(ctx context.Context, id int64) (*domain.Module, error)
	ListModules(ctx context.Context, levelID int64) ([]*domain.Module, error)
	CreateSlide(ctx context.Context, s *domain.Slide) error
	GetSlide(ctx context.Context, id int64) (*domain.Slide, error)
	ListSlides(ctx context.Context, moduleID int64) ([]*domain.Slide, error)

	GetLevelProgress(ctx context.Context, userID, levelID int64) (*domain.LevelProgress, error)
	EnsureLevelProgress(ctx context.Context, userID, levelID int64) (*domain.LevelProgress, error)
	UnlockLevel(ctx context.Context, userID, levelID int64) error
	ListLevelProgress(ctx context.Context, userID int64) ([]domain.LevelProgress, error)
	// HighestUnlockedOrder returns 0 when the user owns no level.
	HighestUnlockedOrder(ctx context.Context, userID int64) (int, error)

	UnlockModule(ctx context.Context, userID, moduleID int64) error
	ListModuleProgress(ctx context.Context, userID int64) ([]domain.ModuleProgress, error)

	// CompleteSlide reports true when the slide was not completed before.
	CompleteSlide(ctx context.Context, userID, slideID int64, at time.Time) (bool, error)
	CompletedSlideIDs(ctx context.Context, userID int64) (map[int64]bool, error)
}

// AuditStore appends audit log rows.
type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error)
}

// Store groups the repositories behind one unit of work.
type Store interface {
	Profiles() ProfileStore
	Points() PointStore
	Curriculum() CurriculumStore
	Audit() AuditStore
	// WithTx runs fn against a store bound to one transaction. A nested call
	// reuses the outer transaction.
	WithTx(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgStore is the Postgres-backed Store.
type PgStore struct {
	pool *pgxpool.Pool
	db   DBTX
	inTx bool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool, db: pool}
}

func (s *PgStore) Profiles() ProfileStore { return NewProfileRepository(s.db) }
func (s *PgStore) Points() PointStore { return NewPointRepository(s.db) }
func (s *PgStore) Curriculum() CurriculumStore { return NewCurriculumRepository(s.db) }
func (s *PgStore) Audit() AuditStore { return NewAuditRepository(s.db) }
func (s *PgStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PgStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PgStore{pool: s.pool, db: tx, inTx: true}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// missingParent maps a foreign key violation to domain.ErrNotFound.
func missingParent(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return domain.ErrNotFound
	}
	return err
}
