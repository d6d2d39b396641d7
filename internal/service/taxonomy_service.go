package service

import (
	"context"

	"blogcms/internal/cache"
	"blogcms/internal/model"
	"blogcms/internal/repository"
)

// CategoryService exposes category operations.
type CategoryService interface {
	ListActive(ctx context.Context) ([]model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	Create(ctx context.Context, category *model.Category) (*model.Category, error)
	Update(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error)
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	repo  repository.CategoryRepository
	cache *cache.Client
}

// NewCategoryService builds a CategoryService with repository and cache.
func NewCategoryService(repo repository.CategoryRepository, cache *cache.Client) CategoryService {
	return &categoryService{repo: repo, cache: cache}
}

func (s *categoryService) ListActive(ctx context.Context) ([]model.Category, error) {
	var cached []model.Category
	if s.cache.GetJSON(ctx, cache.KeyActiveCategories, &cached) {
		return cached, nil
	}
	categories, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, cache.KeyActiveCategories, categories, cache.DefaultTTL)
	return categories, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return s.repo.FindBySlug(ctx, slug, true)
}

func (s *categoryService) Create(ctx context.Context, category *model.Category) (*model.Category, error) {
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	category, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// invalidate also drops featured posts, which embed their categories.
func (s *categoryService) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, cache.KeyActiveCategories, cache.KeyFeaturedPosts)
}

// TagService exposes tag operations.
type TagService interface {
	ListActive(ctx context.Context) ([]model.Tag, error)
	GetBySlug(ctx context.Context, slug string) (*model.Tag, error)
	Create(ctx context.Context, tag *model.Tag) (*model.Tag, error)
	Update(ctx context.Context, id string, patch model.TagPatch) (*model.Tag, error)
	Delete(ctx context.Context, id string) error
}

type tagService struct {
	repo  repository.TagRepository
	cache *cache.Client
}

// NewTagService builds a TagService with repository and cache.
func NewTagService(repo repository.TagRepository, cache *cache.Client) TagService {
	return &tagService{repo: repo, cache: cache}
}

func (s *tagService) ListActive(ctx context.Context) ([]model.Tag, error) {
	var cached []model.Tag
	if s.cache.GetJSON(ctx, cache.KeyActiveTags, &cached) {
		return cached, nil
	}
	tags, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, cache.KeyActiveTags, tags, cache.DefaultTTL)
	return tags, nil
}

func (s *tagService) GetBySlug(ctx context.Context, slug string) (*model.Tag, error) {
	return s.repo.FindBySlug(ctx, slug, true)
}

func (s *tagService) Create(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return tag, nil
}

func (s *tagService) Update(ctx context.Context, id string, patch model.TagPatch) (*model.Tag, error) {
	tag, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return tag, nil
}

func (s *tagService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *tagService) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, cache.KeyActiveTags, cache.KeyFeaturedPosts)
}
