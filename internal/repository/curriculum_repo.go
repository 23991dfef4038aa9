package repository

import (
	"context"
	"time"

	"hahu_backend/internal/domain"
)

type CurriculumRepository struct {
	db DBTX
}

func NewCurriculumRepository(db DBTX) *CurriculumRepository {
	return &CurriculumRepository{db: db}
}

// CreateLevel inserts a level; a taken order or slug yields domain.ErrDuplicateOrder.
func (r *CurriculumRepository) CreateLevel(ctx context.Context, l *domain.Level) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO levels (name, slug, description, sort_order, price_cents)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		l.Name, l.Slug, l.Description, l.Order, l.PriceCents,
	).Scan(&l.ID, &l.CreatedAt)
	if _, ok := uniqueViolation(err); ok {
		return domain.ErrDuplicateOrder
	}
	return err
}

func (r *CurriculumRepository) GetLevel(ctx context.Context, id int64) (*domain.Level, error) {
	var l domain.Level
	err := r.db.QueryRow(ctx,
		`SELECT id, name, slug, description, sort_order, price_cents, created_at
		 FROM levels WHERE id = $1`, id,
	).Scan(&l.ID, &l.Name, &l.Slug, &l.Description, &l.Order, &l.PriceCents, &l.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

func (r *CurriculumRepository) ListLevels(ctx context.Context) ([]*domain.Level, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, slug, description, sort_order, price_cents, created_at
		 FROM levels ORDER BY sort_order`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Level
	for rows.Next() {
		var l domain.Level
		if err := rows.Scan(&l.ID, &l.Name, &l.Slug, &l.Description, &l.Order, &l.PriceCents, &l.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &l)
	}
	return res, rows.Err()
}

func (r *CurriculumRepository) CreateModule(ctx context.Context, m *domain.Module) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO modules (level_id, name, description, sort_order)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		m.LevelID, m.Name, m.Description, m.Order,
	).Scan(&m.ID)
	if _, ok := uniqueViolation(err); ok {
		return domain.ErrDuplicateOrder
	}
	return err
}

func (r *CurriculumRepository) GetModule(ctx context.Context, id int64) (*domain.Module, error) {
	var m domain.Module
	err := r.db.QueryRow(ctx,
		`SELECT id, level_id, name, description, sort_order FROM modules WHERE id = $1`, id,
	).Scan(&m.ID, &m.LevelID, &m.Name, &m.Description, &m.Order)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *CurriculumRepository) ListModules(ctx context.Context, levelID int64) ([]*domain.Module, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, level_id, name, description, sort_order
		 FROM modules WHERE level_id = $1 ORDER BY sort_order, id`, levelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Module
	for rows.Next() {
		var m domain.Module
		if err := rows.Scan(&m.ID, &m.LevelID, &m.Name, &m.Description, &m.Order); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}

func (r *CurriculumRepository) CreateSlide(ctx context.Context, s *domain.Slide) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO slides (module_id, title, sort_order)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		s.ModuleID, s.Title, s.Order,
	).Scan(&s.ID)
	if _, ok := uniqueViolation(err); ok {
		return domain.ErrDuplicateOrder
	}
	return err
}

func (r *CurriculumRepository) GetSlide(ctx context.Context, id int64) (*domain.Slide, error) {
	var s domain.Slide
	err := r.db.QueryRow(ctx,
		`SELECT id, module_id, title, sort_order FROM slides WHERE id = $1`, id,
	).Scan(&s.ID, &s.ModuleID, &s.Title, &s.Order)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *CurriculumRepository) ListSlides(ctx context.Context, moduleID int64) ([]*domain.Slide, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, module_id, title, sort_order
		 FROM slides WHERE module_id = $1 ORDER BY sort_order, id`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Slide
	for rows.Next() {
		var s domain.Slide
		if err := rows.Scan(&s.ID, &s.ModuleID, &s.Title, &s.Order); err != nil {
			return nil, err
		}
		res = append(res, &s)
	}
	return res, rows.Err()
}

func (r *CurriculumRepository) GetLevelProgress(ctx context.Context, userID, levelID int64) (*domain.LevelProgress, error) {
	p := domain.LevelProgress{UserID: userID, LevelID: levelID}
	err := r.db.QueryRow(ctx,
		`SELECT is_locked FROM level_progress WHERE user_id = $1 AND level_id = $2`,
		userID, levelID,
	).Scan(&p.IsLocked)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *CurriculumRepository) EnsureLevelProgress(ctx context.Context, userID, levelID int64) (*domain.LevelProgress, error) {
	if _, err := r.db.Exec(ctx,
		`INSERT INTO level_progress (user_id, level_id, is_locked)
		 VALUES ($1, $2, TRUE)
		 ON CONFLICT (user_id, level_id) DO NOTHING`,
		userID, levelID,
	); err != nil {
		return nil, err
	}
	return r.GetLevelProgress(ctx, userID, levelID)
}

func (r *CurriculumRepository) UnlockLevel(ctx context.Context, userID, levelID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO level_progress (user_id, level_id, is_locked)
		 VALUES ($1, $2, FALSE)
		 ON CONFLICT (user_id, level_id) DO UPDATE SET is_locked = FALSE`,
		userID, levelID,
	)
	return err
}

func (r *CurriculumRepository) ListLevelProgress(ctx context.Context, userID int64) ([]domain.LevelProgress, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id, level_id, is_locked FROM level_progress WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.LevelProgress
	for rows.Next() {
		var p domain.LevelProgress
		if err := rows.Scan(&p.UserID, &p.LevelID, &p.IsLocked); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *CurriculumRepository) HighestUnlockedOrder(ctx context.Context, userID int64) (int, error) {
	var order int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(l.sort_order), 0)
		 FROM level_progress lp
		 JOIN levels l ON l.id = lp.level_id
		 WHERE lp.user_id = $1 AND NOT lp.is_locked`,
		userID,
	).Scan(&order)
	return order, err
}

func (r *CurriculumRepository) UnlockModule(ctx context.Context, userID, moduleID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO module_progress (user_id, module_id, is_locked)
		 VALUES ($1, $2, FALSE)
		 ON CONFLICT (user_id, module_id) DO UPDATE SET is_locked = FALSE`,
		userID, moduleID,
	)
	return err
}

func (r *CurriculumRepository) ListModuleProgress(ctx context.Context, userID int64) ([]domain.ModuleProgress, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id, module_id, is_locked FROM module_progress WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.ModuleProgress
	for rows.Next() {
		var p domain.ModuleProgress
		if err := rows.Scan(&p.UserID, &p.ModuleID, &p.IsLocked); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *CurriculumRepository) CompleteSlide(ctx context.Context, userID, slideID int64, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO slide_progress (user_id, slide_id, is_completed, completed_at)
		 VALUES ($1, $2, TRUE, $3)
		 ON CONFLICT (user_id, slide_id) DO UPDATE
		 SET is_completed = TRUE, completed_at = EXCLUDED.completed_at
		 WHERE NOT slide_progress.is_completed`,
		userID, slideID, at,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CurriculumRepository) CompletedSlideIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	rows, err := r.db.Query(ctx,
		`SELECT slide_id FROM slide_progress WHERE user_id = $1 AND is_completed`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res[id] = true
	}
	return res, rows.Err()
}
