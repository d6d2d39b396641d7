package db

import (
	"fmt"

	"gorm.io/gorm"

	"blogcms/internal/model"
)

// SearchIndex is the name of the full-text index over post title, excerpt and content.
const SearchIndex = "idx_posts_search"

// Migrate creates or updates the schema for all models, then the search index.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Category{}, &model.Tag{}, &model.Post{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return createSearchIndex(db)
}

func createSearchIndex(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case DriverMySQL:
		if db.Migrator().HasIndex(&model.Post{}, SearchIndex) {
			return nil
		}
		if err := db.Exec("CREATE FULLTEXT INDEX " + SearchIndex + " ON posts (title, excerpt, content)").Error; err != nil {
			return fmt.Errorf("create fulltext index: %w", err)
		}
	case DriverPostgres:
		stmt := "CREATE INDEX IF NOT EXISTS " + SearchIndex + " ON posts USING GIN (" + PostgresSearchVector + ")"
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create gin index: %w", err)
		}
	}
	// sqlite falls back to LIKE matching
	return nil
}

// PostgresSearchVector is the tsvector expression the GIN index is built on.
// Queries must use the identical expression for the planner to pick the index.
const PostgresSearchVector = "to_tsvector('simple', coalesce(title, '') || ' ' || coalesce(excerpt, '') || ' ' || coalesce(content, ''))"
