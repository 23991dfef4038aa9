package domain

import "time"

// Level is one paid tier of the curriculum. Order starts at 1 and is unique.
type Level struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	Order       int       `db:"sort_order" json:"order"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Module belongs to a level and is ordered within it.
type Module struct {
	ID          int64  `db:"id" json:"id"`
	LevelID     int64  `db:"level_id" json:"level_id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Order       int    `db:"sort_order" json:"order"`
}

// Slide belongs to a module and is ordered within it.
type Slide struct {
	ID       int64  `db:"id" json:"id"`
	ModuleID int64  `db:"module_id" json:"module_id"`
	Title    string `db:"title" json:"title"`
	Order    int    `db:"sort_order" json:"order"`
}

// LevelProgress is the per-user lock state of a level.
type LevelProgress struct {
	UserID   int64 `db:"user_id" json:"user_id"`
	LevelID  int64 `db:"level_id" json:"level_id"`
	IsLocked bool  `db:"is_locked" json:"is_locked"`
}

// ModuleProgress is the per-user lock state of a module.
type ModuleProgress struct {
	UserID   int64 `db:"user_id" json:"user_id"`
	ModuleID int64 `db:"module_id" json:"module_id"`
	IsLocked bool  `db:"is_locked" json:"is_locked"`
}

// SlideProgress records slide completion for a user.
type SlideProgress struct {
	UserID      int64      `db:"user_id" json:"user_id"`
	SlideID     int64      `db:"slide_id" json:"slide_id"`
	IsCompleted bool       `db:"is_completed" json:"is_completed"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// ModuleView is a module as one user sees it.
type ModuleView struct {
	Module
	IsLocked        bool `json:"is_locked"`
	SlideCount      int  `json:"slide_count"`
	CompletedSlides int  `json:"completed_slides"`
}

// LevelView is a level as one user sees it.
type LevelView struct {
	Level
	IsLocked bool         `json:"is_locked"`
	Modules  []ModuleView `json:"modules"`
}

// SlideView is returned when a user opens a slide.
type SlideView struct {
	Slide       Slide  `json:"slide"`
	LevelID     int64  `json:"level_id"`
	IsCompleted bool   `json:"is_completed"`
	Next        *Slide `json:"next,omitempty"`
}
