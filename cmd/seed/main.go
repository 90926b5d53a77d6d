package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/AdityaShome/Secondhome-sub002/config"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/internal/infrastructure/mongodb"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	client, db, err := mongodb.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = mongodb.Disconnect(client) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}
	fmt.Println("indexes ensured")

	email := getenv("SEED_ADMIN_EMAIL", "admin@secondhome.local")
	password := getenv("SEED_ADMIN_PASSWORD", "password123")
	name := getenv("SEED_ADMIN_NAME", "Second Home Admin")

	users := mongodb.NewUserRepository(db)
	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != entity.RoleAdmin {
			if err := users.SetRole(ctx, existing.ID, entity.RoleAdmin); err != nil {
				log.Fatalf("failed to promote %s: %v", email, err)
			}
		}
		fmt.Printf("admin exists: id=%s email=%s\n", existing.ID.Hex(), email)
		return
	case !errors.Is(err, repo.ErrNotFound):
		log.Fatalf("failed to look up %s: %v", email, err)
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	admin := &entity.User{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Role:          entity.RoleAdmin,
		EmailVerified: true,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s password=%s\n", admin.ID.Hex(), email, password)
}
