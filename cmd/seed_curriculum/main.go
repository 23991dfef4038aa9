package main

import (
	"context"
	"log"
	"os"
	"time"

	"hahu_backend/internal/db"
	"hahu_backend/internal/repository"
	"hahu_backend/internal/service"

	"github.com/joho/godotenv"
)

type seedLevel struct {
	name   string
	price  int64
	module string
	slide  string
}

var defaultLevels = []seedLevel{
	{"Beginner", 0, "Getting Started", "Welcome"},
	{"Basic", 1000, "Foundations", "Core Concepts"},
	{"Advanced", 2500, "Deep Dive", "Advanced Techniques"},
	{"Pro", 5000, "Mastery", "Putting It Together"},
}

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	pool := db.Connect(dsn)
	defer pool.Close()

	store := repository.NewPgStore(pool)
	svc := service.NewCurriculumService(store, service.NewUnlockService(store), service.NewClock(time.Local))
	ctx := context.Background()

	existing, err := svc.Levels(ctx)
	if err != nil {
		log.Fatalf("list levels: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("catalogue already has %d levels, nothing to do\n", len(existing))
		return
	}

	err = store.WithTx(ctx, func(tx repository.Store) error {
		cs := service.NewCurriculumService(tx, service.NewUnlockService(tx), service.NewClock(time.Local))
		for i, l := range defaultLevels {
			level, err := cs.CreateLevel(ctx, service.NewLevel{Name: l.name, Order: i + 1, PriceCents: l.price})
			if err != nil {
				return err
			}
			module, err := cs.CreateModule(ctx, level.ID, service.NewModule{Name: l.module, Order: 1})
			if err != nil {
				return err
			}
			if _, err := cs.CreateSlide(ctx, module.ID, service.NewSlide{Title: l.slide, Order: 1}); err != nil {
				return err
			}
			log.Printf("seeded level %d %s (%s)\n", level.Order, level.Name, level.Slug)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}
