package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"blogcms/internal/content"
	apperrors "blogcms/internal/errors"
	"blogcms/internal/model"
)

const (
	msgPostNotFound  = "post not found"
	msgPostDuplicate = "a post with this slug already exists"
)

// PostRepository defines post persistence operations.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post, categoryIDs, tagIDs []string) error
	Update(ctx context.Context, id string, patch model.PostPatch) (*model.Post, error)
	Delete(ctx context.Context, id string) (*model.Post, error)
	FindByID(ctx context.Context, id string) (*model.Post, error)
	FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*model.Post, error)
	List(ctx context.Context, q PostQuery) (*model.PostPage, error)
	Featured(ctx context.Context, limit int) ([]model.Post, error)
	Related(ctx context.Context, post *model.Post, limit int) ([]model.Post, error)
	IncrementViews(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.PostStats, error)
}

type postRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, now: time.Now}
}

// derivePost fills the fields computed at creation time.
func derivePost(p *model.Post, now time.Time) {
	source := p.Slug
	if source == "" {
		source = p.Title
	}
	p.Slug = content.NewSlug(source, content.PostSlugLength)
	p.ReadingTime = content.ReadingTime(p.Content)
	if p.Status == "" {
		p.Status = model.StatusDraft
	}
	if p.Status == model.StatusPublished && p.PublishedAt == nil {
		t := now
		p.PublishedAt = &t
	}
}

// applyPostPatch applies patch to p. The slug is never touched.
func applyPostPatch(p *model.Post, patch model.PostPatch, now time.Time) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Excerpt != nil {
		p.Excerpt = *patch.Excerpt
	}
	if patch.Content != nil {
		p.Content = *patch.Content
		p.ReadingTime = content.ReadingTime(p.Content)
	}
	if patch.AuthorName != nil {
		p.Author.Name = *patch.AuthorName
	}
	if patch.AuthorEmail != nil {
		p.Author.Email = *patch.AuthorEmail
	}
	if patch.FeaturedImage != nil {
		p.FeaturedImage = *patch.FeaturedImage
	}
	if patch.SEOMetaTitle != nil {
		p.SEO.MetaTitle = *patch.SEOMetaTitle
	}
	if patch.SEODesc != nil {
		p.SEO.MetaDescription = *patch.SEODesc
	}
	if patch.SEOKeywords != nil {
		p.SEO.Keywords = patch.SEOKeywords
	}
	if patch.Status != nil {
		p.Status = *patch.Status
		if p.Status == model.StatusPublished && p.PublishedAt == nil {
			t := now
			p.PublishedAt = &t
		}
	}
}

// Create derives slug, reading time and publish time, resolves the referenced
// categories and tags, then inserts the post with its join rows atomically.
func (r *postRepository) Create(ctx context.Context, post *model.Post, categoryIDs, tagIDs []string) error {
	derivePost(post, r.now())
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories, err := loadCategories(tx, categoryIDs)
		if err != nil {
			return err
		}
		tags, err := loadTags(tx, tagIDs)
		if err != nil {
			return err
		}
		post.Categories = categories
		post.Tags = tags
		return tx.Omit("Categories.*", "Tags.*").Create(post).Error
	})
	if err != nil {
		post.ID = ""
	}
	return translate(err, msgPostDuplicate, msgPostNotFound)
}

// Update applies patch inside a transaction. Association sets are replaced only
// when the patch carries them.
func (r *postRepository) Update(ctx context.Context, id string, patch model.PostPatch) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := preloadAssociations(tx).Where("id = ?", id).First(&post).Error; err != nil {
			return err
		}
		applyPostPatch(&post, patch, r.now())

		var (
			categories []model.Category
			tags       []model.Tag
			err        error
		)
		if patch.CategoryIDs != nil {
			if categories, err = loadCategories(tx, patch.CategoryIDs); err != nil {
				return err
			}
		}
		if patch.TagIDs != nil {
			if tags, err = loadTags(tx, patch.TagIDs); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Save(&post).Error; err != nil {
			return err
		}
		if patch.CategoryIDs != nil {
			if err := replaceAssociation(tx, &post, "Categories", categories); err != nil {
				return err
			}
			post.Categories = categories
		}
		if patch.TagIDs != nil {
			if err := replaceAssociation(tx, &post, "Tags", tags); err != nil {
				return err
			}
			post.Tags = tags
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, msgPostDuplicate, msgPostNotFound)
	}
	return &post, nil
}

func replaceAssociation[T any](tx *gorm.DB, post *model.Post, name string, values []T) error {
	assoc := tx.Omit(name + ".*").Model(post).Association(name)
	if len(values) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(values)
}

// Delete removes the post and its join rows, returning the deleted post.
func (r *postRepository) Delete(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&post).Error; err != nil {
			return err
		}
		return tx.Select(clause.Associations).Delete(&post).Error
	})
	if err != nil {
		return nil, translate(err, msgPostDuplicate, msgPostNotFound)
	}
	return &post, nil
}

// FindByID finds a post by ID regardless of status.
func (r *postRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := preloadAssociations(r.db.WithContext(ctx)).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, translate(err, msgPostDuplicate, msgPostNotFound)
	}
	return &post, nil
}

// FindBySlug finds a post by slug, optionally requiring it to be published.
func (r *postRepository) FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*model.Post, error) {
	tx := preloadAssociations(r.db.WithContext(ctx)).Where("slug = ?", slug)
	if publishedOnly {
		tx = tx.Where("status = ?", model.StatusPublished)
	}
	var post model.Post
	if err := tx.First(&post).Error; err != nil {
		return nil, translate(err, msgPostDuplicate, msgPostNotFound)
	}
	return &post, nil
}

// List returns one page of posts matching q together with the total match count.
func (r *postRepository) List(ctx context.Context, q PostQuery) (*model.PostPage, error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, err
	}
	sort, err := ParseSort(q.Sort)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := applyFilters(r.db.WithContext(ctx).Model(&model.Post{}), q).Count(&total).Error; err != nil {
		return nil, translate(err, msgPostDuplicate, msgPostNotFound)
	}

	posts := make([]model.Post, 0, q.Limit)
	err = preloadAssociations(applyFilters(r.db.WithContext(ctx), q)).
		Order(sort.OrderBy()).
		Order("posts.id").
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, translate(err, msgPostDuplicate, msgPostNotFound)
	}

	return &model.PostPage{
		Posts:      posts,
		Pagination: model.NewPagination(q.Page, q.Limit, total),
	}, nil
}

// Featured returns the most viewed published posts.
func (r *postRepository) Featured(ctx context.Context, limit int) ([]model.Post, error) {
	if limit < 1 || limit > FeaturedLimit {
		limit = FeaturedLimit
	}
	posts := make([]model.Post, 0, limit)
	err := preloadAssociations(r.db.WithContext(ctx)).
		Where("posts.status = ?", model.StatusPublished).
		Order("posts.views DESC").
		Order("posts.id").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, translate(err, msgPostDuplicate, msgPostNotFound)
	}
	return posts, nil
}

// Related returns other published posts sharing a category or tag with post.
func (r *postRepository) Related(ctx context.Context, post *model.Post, limit int) ([]model.Post, error) {
	if limit < 1 || limit > RelatedLimit {
		limit = RelatedLimit
	}
	posts := make([]model.Post, 0, limit)
	categoryIDs, tagIDs := post.CategoryIDs(), post.TagIDs()
	if len(categoryIDs) == 0 && len(tagIDs) == 0 {
		return posts, nil
	}

	cond, args := relatedCondition(categoryIDs, tagIDs)
	err := preloadAssociations(r.db.WithContext(ctx)).
		Where("posts.id <> ?", post.ID).
		Where("posts.status = ?", model.StatusPublished).
		Where(cond, args...).
		Order("posts.published_at DESC").
		Order("posts.id").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, translate(err, msgPostDuplicate, msgPostNotFound)
	}
	return posts, nil
}

// IncrementViews adds one view with a single atomic update.
func (r *postRepository) IncrementViews(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return translate(res.Error, msgPostDuplicate, msgPostNotFound)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound(msgPostNotFound)
	}
	return nil
}

// Stats aggregates post counts and total views.
func (r *postRepository) Stats(ctx context.Context) (*model.PostStats, error) {
	var stats model.PostStats
	tx := r.db.WithContext(ctx)
	if err := tx.Model(&model.Post{}).Count(&stats.TotalPosts).Error; err != nil {
		return nil, translate(err, msgPostDuplicate, msgPostNotFound)
	}
	if err := tx.Model(&model.Post{}).Where("status = ?", model.StatusPublished).Count(&stats.PublishedPosts).Error; err != nil {
		return nil, translate(err, msgPostDuplicate, msgPostNotFound)
	}
	if err := tx.Model(&model.Post{}).Where("status = ?", model.StatusDraft).Count(&stats.DraftPosts).Error; err != nil {
		return nil, translate(err, msgPostDuplicate, msgPostNotFound)
	}
	if err := tx.Model(&model.Post{}).Select("COALESCE(SUM(views), 0)").Scan(&stats.TotalViews).Error; err != nil {
		return nil, translate(err, msgPostDuplicate, msgPostNotFound)
	}
	return &stats, nil
}

func preloadAssociations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("categories.name") }).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") })
}

// loadCategories resolves ids to existing categories. Any unknown id is a
// validation error.
func loadCategories(tx *gorm.DB, ids []string) ([]model.Category, error) {
	ids = uniqueIDs(ids)
	categories := make([]model.Category, 0, len(ids))
	if len(ids) == 0 {
		return categories, nil
	}
	if err := tx.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	if len(categories) != len(ids) {
		return nil, apperrors.Validation("unknown category reference",
			apperrors.FieldError{Field: "categories", Message: "one or more categories do not exist"})
	}
	return categories, nil
}

// loadTags resolves ids to existing tags. Any unknown id is a validation error.
func loadTags(tx *gorm.DB, ids []string) ([]model.Tag, error) {
	ids = uniqueIDs(ids)
	tags := make([]model.Tag, 0, len(ids))
	if len(ids) == 0 {
		return tags, nil
	}
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, apperrors.Validation("unknown tag reference",
			apperrors.FieldError{Field: "tags", Message: "one or more tags do not exist"})
	}
	return tags, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
