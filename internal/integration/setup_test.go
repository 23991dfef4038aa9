package integration

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/repository"
	"hahu_backend/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// connect expects DATABASE_URL to point at a disposable database: every test
// starts from empty tables.
func connect(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	dbp, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(dbp.Close)

	applyMigrations(t, dbp)
	_, err = dbp.Exec(ctx, `TRUNCATE audit_logs, slide_progress, module_progress, level_progress,
		point_entries, profiles, slides, modules, levels RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return dbp
}

func applyMigrations(t *testing.T, dbp *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(migDir, name))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := dbp.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", name, err)
		}
	}
}

type env struct {
	t      *testing.T
	ctx    context.Context
	store  *repository.PgStore
	svc    *service.Services
	levels []*domain.Level
}

func newEnv(t *testing.T) *env {
	t.Helper()
	service.InitJWT("integration-secret", time.Hour)
	store := repository.NewPgStore(connect(t))
	e := &env{
		t:     t,
		ctx:   context.Background(),
		store: store,
		svc:   service.NewServices(store, service.NewLocalLocker(5*time.Second), service.NewClock(time.UTC)),
	}
	for i, name := range []string{"Beginner", "Basic", "Advanced"} {
		level, err := e.svc.Curriculum.CreateLevel(e.ctx, service.NewLevel{Name: name, Order: i + 1})
		if err != nil {
			t.Fatalf("create level: %v", err)
		}
		for m := 1; m <= 2; m++ {
			if _, err := e.svc.Curriculum.CreateModule(e.ctx, level.ID, service.NewModule{Name: name + " module", Order: m}); err != nil {
				t.Fatalf("create module: %v", err)
			}
		}
		e.levels = append(e.levels, level)
	}
	return e
}

func (e *env) profile(name string, referrer *domain.Profile) *domain.Profile {
	e.t.Helper()
	code, err := service.GenerateReferralCode()
	if err != nil {
		e.t.Fatal(err)
	}
	p := &domain.Profile{Username: name, PasswordHash: "x", FullName: name, ReferralCode: code}
	if referrer != nil {
		p.ReferredBy = &referrer.ID
	}
	if err := e.store.Profiles().Create(e.ctx, p); err != nil {
		e.t.Fatalf("create profile: %v", err)
	}
	return p
}

func (e *env) balance(p *domain.Profile) int64 {
	e.t.Helper()
	fresh, err := e.store.Profiles().GetByID(e.ctx, p.ID)
	if err != nil {
		e.t.Fatal(err)
	}
	sum, err := e.store.Points().Sum(e.ctx, p.ID)
	if err != nil {
		e.t.Fatal(err)
	}
	if fresh.AuraPoints != sum {
		e.t.Fatalf("%s: cached %d != ledger %d", p.Username, fresh.AuraPoints, sum)
	}
	return sum
}
