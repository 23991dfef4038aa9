package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"hahu_backend/internal/db"
	"hahu_backend/internal/domain"
	"hahu_backend/internal/repository"
	"hahu_backend/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	username := flag.String("username", "testuser", "username")
	password := flag.String("password", "testpass123", "password")
	fullName := flag.String("name", "Tester", "full name")
	ref := flag.String("ref", "", "referral code of the referrer")
	flag.Parse()

	// expects DATABASE_URL and JWT_SECRET env vars
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	service.InitJWT(os.Getenv("JWT_SECRET"), 24*time.Hour)

	pool := db.Connect(dsn)
	defer pool.Close()

	store := repository.NewPgStore(pool)
	ledger := service.NewLedgerService(store, service.NewClock(time.Local))
	auth := service.NewAuthService(store, ledger)
	ctx := context.Background()

	u, err := store.Profiles().GetByUsername(ctx, *username)
	switch {
	case err == nil:
		log.Printf("user already exists id=%d\n", u.ID)
	case errors.Is(err, domain.ErrNotFound):
		u, err = auth.Signup(ctx, service.SignupInput{
			Username:     *username,
			Password:     *password,
			FullName:     *fullName,
			ReferralCode: *ref,
		})
		if err != nil {
			log.Fatalf("create user failed: %v", err)
		}
		log.Printf("user created id=%d\n", u.ID)
	default:
		log.Fatalf("lookup user failed: %v", err)
	}

	log.Printf("user id=%d username=%s referral_code=%s points=%d\n", u.ID, u.Username, u.ReferralCode, u.AuraPoints)

	token, err := service.GenerateJWT(u.ID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
