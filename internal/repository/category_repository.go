package repository

import (
	"context"

	"gorm.io/gorm"

	"blogcms/internal/content"
	"blogcms/internal/model"
)

const (
	msgCategoryNotFound  = "category not found"
	msgCategoryDuplicate = "a category with this name or slug already exists"

	categoryPostCount = "categories.*, (SELECT COUNT(*) FROM post_categories pc WHERE pc.category_id = categories.id) AS post_count"
)

// CategoryRepository defines category persistence operations.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindBySlug(ctx context.Context, slug string, activeOnly bool) (*model.Category, error)
	ListActive(ctx context.Context) ([]model.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func deriveCategory(c *model.Category) {
	source := c.Slug
	if source == "" {
		source = c.Name
	}
	c.Slug = content.NewSlug(source, content.CategorySlugLength)
	if c.Color == "" {
		c.Color = model.DefaultCategoryColor
	}
	if c.Icon == "" {
		c.Icon = model.DefaultCategoryIcon
	}
}

// Create derives the slug and defaults, then inserts the category.
func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	deriveCategory(category)
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		category.ID = ""
		return translate(err, msgCategoryDuplicate, msgCategoryNotFound)
	}
	return nil
}

// Update applies patch. The slug is kept even when the name changes.
func (r *categoryRepository) Update(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&category).Error; err != nil {
			return err
		}
		if patch.Name != nil {
			category.Name = *patch.Name
		}
		if patch.Description != nil {
			category.Description = *patch.Description
		}
		if patch.Color != nil {
			category.Color = *patch.Color
		}
		if patch.Icon != nil {
			category.Icon = *patch.Icon
		}
		if patch.IsActive != nil {
			category.IsActive = *patch.IsActive
		}
		return tx.Save(&category).Error
	})
	if err != nil {
		return nil, translate(err, msgCategoryDuplicate, msgCategoryNotFound)
	}
	return r.FindByID(ctx, category.ID)
}

// Delete detaches the category from every post, then removes it.
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category model.Category
		if err := tx.Where("id = ?", id).First(&category).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_categories WHERE category_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	return translate(err, msgCategoryDuplicate, msgCategoryNotFound)
}

// FindByID finds a category by ID with its post count.
func (r *categoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Select(categoryPostCount).Where("categories.id = ?", id).First(&category).Error; err != nil {
		return nil, translate(err, msgCategoryDuplicate, msgCategoryNotFound)
	}
	return &category, nil
}

// FindBySlug finds a category by slug with its post count.
func (r *categoryRepository) FindBySlug(ctx context.Context, slug string, activeOnly bool) (*model.Category, error) {
	tx := r.db.WithContext(ctx).Select(categoryPostCount).Where("categories.slug = ?", slug)
	if activeOnly {
		tx = tx.Where("categories.is_active = ?", true)
	}
	var category model.Category
	if err := tx.First(&category).Error; err != nil {
		return nil, translate(err, msgCategoryDuplicate, msgCategoryNotFound)
	}
	return &category, nil
}

// ListActive lists active categories sorted by name.
func (r *categoryRepository) ListActive(ctx context.Context) ([]model.Category, error) {
	categories := make([]model.Category, 0)
	err := r.db.WithContext(ctx).
		Select(categoryPostCount).
		Where("categories.is_active = ?", true).
		Order("categories.name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, translate(err, msgCategoryDuplicate, msgCategoryNotFound)
	}
	return categories, nil
}
