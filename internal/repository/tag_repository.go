package repository

import (
	"context"

	"gorm.io/gorm"

	"blogcms/internal/content"
	"blogcms/internal/model"
)

const (
	msgTagNotFound  = "tag not found"
	msgTagDuplicate = "a tag with this name or slug already exists"

	tagPostCount = "tags.*, (SELECT COUNT(*) FROM post_tags pt WHERE pt.tag_id = tags.id) AS post_count"
)

// TagRepository defines tag persistence operations.
type TagRepository interface {
	Create(ctx context.Context, tag *model.Tag) error
	Update(ctx context.Context, id string, patch model.TagPatch) (*model.Tag, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Tag, error)
	FindBySlug(ctx context.Context, slug string, activeOnly bool) (*model.Tag, error)
	ListActive(ctx context.Context) ([]model.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func deriveTag(t *model.Tag) {
	source := t.Slug
	if source == "" {
		source = t.Name
	}
	t.Slug = content.NewSlug(source, content.TagSlugLength)
	if t.Color == "" {
		t.Color = model.DefaultTagColor
	}
}

func (r *tagRepository) Create(ctx context.Context, tag *model.Tag) error {
	deriveTag(tag)
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		tag.ID = ""
		return translate(err, msgTagDuplicate, msgTagNotFound)
	}
	return nil
}

func (r *tagRepository) Update(ctx context.Context, id string, patch model.TagPatch) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&tag).Error; err != nil {
			return err
		}
		if patch.Name != nil {
			tag.Name = *patch.Name
		}
		if patch.Color != nil {
			tag.Color = *patch.Color
		}
		if patch.IsActive != nil {
			tag.IsActive = *patch.IsActive
		}
		return tx.Save(&tag).Error
	})
	if err != nil {
		return nil, translate(err, msgTagDuplicate, msgTagNotFound)
	}
	return r.FindByID(ctx, tag.ID)
}

// Delete detaches the tag from every post, then removes it.
func (r *tagRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag model.Tag
		if err := tx.Where("id = ?", id).First(&tag).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
	return translate(err, msgTagDuplicate, msgTagNotFound)
}

func (r *tagRepository) FindByID(ctx context.Context, id string) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.WithContext(ctx).Select(tagPostCount).Where("tags.id = ?", id).First(&tag).Error; err != nil {
		return nil, translate(err, msgTagDuplicate, msgTagNotFound)
	}
	return &tag, nil
}

func (r *tagRepository) FindBySlug(ctx context.Context, slug string, activeOnly bool) (*model.Tag, error) {
	tx := r.db.WithContext(ctx).Select(tagPostCount).Where("tags.slug = ?", slug)
	if activeOnly {
		tx = tx.Where("tags.is_active = ?", true)
	}
	var tag model.Tag
	if err := tx.First(&tag).Error; err != nil {
		return nil, translate(err, msgTagDuplicate, msgTagNotFound)
	}
	return &tag, nil
}

// ListActive lists active tags sorted by name.
func (r *tagRepository) ListActive(ctx context.Context) ([]model.Tag, error) {
	tags := make([]model.Tag, 0)
	err := r.db.WithContext(ctx).
		Select(tagPostCount).
		Where("tags.is_active = ?", true).
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, translate(err, msgTagDuplicate, msgTagNotFound)
	}
	return tags, nil
}
