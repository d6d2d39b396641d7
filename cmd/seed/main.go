package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"blogcms/internal/config"
	"blogcms/internal/db"
	apperrors "blogcms/internal/errors"
	"blogcms/internal/logging"
	"blogcms/internal/model"
	"blogcms/internal/repository"
)

var categories = []model.Category{
	{Name: "Unity Development", Slug: "unity-development", Description: "Game development tutorials with Unity", Color: "#667eea", Icon: "fas fa-gamepad"},
	{Name: "MQ5 & Trading", Slug: "mq5-trading", Description: "Building trading robots with MQ5", Color: "#28a745", Icon: "fas fa-chart-line"},
	{Name: "C# Programming", Slug: "csharp-programming", Description: "C# programming tutorials", Color: "#fd7e14", Icon: "fas fa-code"},
	{Name: "Performance Optimization", Slug: "performance-optimization", Description: "Making software faster", Color: "#dc3545", Icon: "fas fa-tachometer-alt"},
	{Name: "AI & Machine Learning", Slug: "ai-machine-learning", Description: "Artificial intelligence and machine learning", Color: "#6f42c1", Icon: "fas fa-brain"},
}

var tags = []model.Tag{
	{Name: "Unity", Slug: "unity", Color: "#667eea"},
	{Name: "C#", Slug: "csharp", Color: "#fd7e14"},
	{Name: "MQ5", Slug: "mq5", Color: "#28a745"},
	{Name: "Trading", Slug: "trading", Color: "#17a2b8"},
	{Name: "Performance", Slug: "performance", Color: "#dc3545"},
	{Name: "Mobile", Slug: "mobile", Color: "#6c757d"},
	{Name: "AI", Slug: "ai", Color: "#6f42c1"},
	{Name: "Networking", Slug: "networking", Color: "#20c997"},
	{Name: "Optimization", Slug: "optimization", Color: "#ffc107"},
	{Name: "Tutorial", Slug: "tutorial", Color: "#e83e8c"},
}

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("starting seed")

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close(gormDB)

	if err := db.Migrate(gormDB); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	ctx := context.Background()
	created, err := seedCategories(ctx, repository.NewCategoryRepository(gormDB))
	if err != nil {
		log.WithError(err).Fatal("failed to seed categories")
	}
	log.WithField("created", created).Info("categories seeded")

	created, err = seedTags(ctx, repository.NewTagRepository(gormDB))
	if err != nil {
		log.WithError(err).Fatal("failed to seed tags")
	}
	log.WithField("created", created).Info("tags seeded")

	if err := seedAdmin(ctx, repository.NewUserRepository(gormDB), log); err != nil {
		log.WithError(err).Fatal("failed to seed admin")
	}
	log.Info("seed completed")
}

// seedCategories creates the categories that do not exist yet, matched by slug.
func seedCategories(ctx context.Context, repo repository.CategoryRepository) (int, error) {
	created := 0
	for _, c := range categories {
		_, err := repo.FindBySlug(ctx, c.Slug, false)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return created, fmt.Errorf("check category %s: %w", c.Slug, err)
		}
		c.IsActive = true
		if err := repo.Create(ctx, &c); err != nil {
			return created, fmt.Errorf("create category %s: %w", c.Slug, err)
		}
		created++
	}
	return created, nil
}

func seedTags(ctx context.Context, repo repository.TagRepository) (int, error) {
	created := 0
	for _, t := range tags {
		_, err := repo.FindBySlug(ctx, t.Slug, false)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return created, fmt.Errorf("check tag %s: %w", t.Slug, err)
		}
		t.IsActive = true
		if err := repo.Create(ctx, &t); err != nil {
			return created, fmt.Errorf("create tag %s: %w", t.Slug, err)
		}
		created++
	}
	return created, nil
}

// seedAdmin creates an admin from SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD when
// both are set and no user with that email exists.
func seedAdmin(ctx context.Context, repo repository.UserRepository, log logrus.FieldLogger) error {
	email, password := os.Getenv("SEED_ADMIN_EMAIL"), os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Info("SEED_ADMIN_EMAIL or SEED_ADMIN_PASSWORD not set, skipping admin")
		return nil
	}

	_, err := repo.FindByEmail(ctx, email)
	if err == nil {
		log.WithField("email", email).Info("admin already exists")
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("check admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	admin := &model.User{Name: "Admin", Email: email, PasswordHash: string(hash), Role: model.RoleAdmin}
	if err := repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.WithField("email", admin.Email).Info("admin created")
	return nil
}
