// Package memstore is an in-memory repository.Store used by tests and by
// STORAGE=memory local runs.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/repository"
)

type key struct {
	user int64
	item int64
}

type tables struct {
	seq            int64
	profiles       map[int64]*domain.Profile
	points         []domain.PointEntry
	levels         map[int64]domain.Level
	modules        map[int64]domain.Module
	slides         map[int64]domain.Slide
	levelProgress  map[key]bool
	moduleProgress map[key]bool
	slideProgress  map[key]time.Time
	audit          []domain.AuditLog
}

func newTables() *tables {
	return &tables{
		profiles:       make(map[int64]*domain.Profile),
		levels:         make(map[int64]domain.Level),
		modules:        make(map[int64]domain.Module),
		slides:         make(map[int64]domain.Slide),
		levelProgress:  make(map[key]bool),
		moduleProgress: make(map[key]bool),
		slideProgress:  make(map[key]time.Time),
	}
}

func (t *tables) nextID() int64 {
	t.seq++
	return t.seq
}

func (t *tables) clone() *tables {
	c := &tables{
		seq:            t.seq,
		profiles:       make(map[int64]*domain.Profile, len(t.profiles)),
		points:         slices.Clone(t.points),
		levels:         maps.Clone(t.levels),
		modules:        maps.Clone(t.modules),
		slides:         maps.Clone(t.slides),
		levelProgress:  maps.Clone(t.levelProgress),
		moduleProgress: maps.Clone(t.moduleProgress),
		slideProgress:  maps.Clone(t.slideProgress),
		audit:          slices.Clone(t.audit),
	}
	for id, p := range t.profiles {
		row := *p
		c.profiles[id] = &row
	}
	return c
}

type db struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	t    *tables
	now  func() time.Time
}

// Store implements repository.Store on top of maps guarded by a mutex.
// Transactions are serialized and roll back by restoring a snapshot. A write
// outside a transaction takes the transaction lock for its own duration.
type Store struct {
	db   *db
	inTx bool
}

// conn is what every repo holds: the tables plus whether it runs inside a
// transaction.
type conn struct {
	db   *db
	inTx bool
}

// lock takes the write lock and returns its release.
func (c conn) lock() func() {
	if !c.inTx {
		c.db.txMu.Lock()
	}
	c.db.mu.Lock()
	return func() {
		c.db.mu.Unlock()
		if !c.inTx {
			c.db.txMu.Unlock()
		}
	}
}

type Option func(*db)

// WithClock sets the clock used for created_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *db) { d.now = now }
}

func New(opts ...Option) *Store {
	d := &db{t: newTables(), now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return &Store{db: d}
}

func (s *Store) repoConn() conn { return conn{db: s.db, inTx: s.inTx} }

func (s *Store) Profiles() repository.ProfileStore { return &profileRepo{s.repoConn()} }
func (s *Store) Points() repository.PointStore { return &pointRepo{s.repoConn()} }
func (s *Store) Curriculum() repository.CurriculumStore { return &curriculumRepo{s.repoConn()} }
func (s *Store) Audit() repository.AuditStore { return &auditRepo{s.repoConn()} }
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.db.txMu.Lock()
	defer s.db.txMu.Unlock()

	s.db.mu.RLock()
	snapshot := s.db.t.clone()
	s.db.mu.RUnlock()

	if err := fn(&Store{db: s.db, inTx: true}); err != nil {
		s.db.mu.Lock()
		s.db.t = snapshot
		s.db.mu.Unlock()
		return err
	}
	return nil
}
