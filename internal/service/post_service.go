package service

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/sirupsen/logrus"

	"blogcms/internal/cache"
	"blogcms/internal/events"
	"blogcms/internal/model"
	"blogcms/internal/repository"
)

// CreatePostInput carries a new post and its optional featured image.
type CreatePostInput struct {
	Title       string
	Slug        string
	Excerpt     string
	Content     string
	Author      model.Author
	Status      model.PostStatus
	CategoryIDs []string
	TagIDs      []string
	SEO         model.SEO
	Image       *multipart.FileHeader
	ImageAlt    string
}

// UpdatePostInput is a partial update plus an optional replacement image.
type UpdatePostInput struct {
	Patch    model.PostPatch
	Image    *multipart.FileHeader
	ImageAlt *string
}

// PostService exposes post operations to the HTTP layer.
type PostService interface {
	ListPublished(ctx context.Context, q repository.PostQuery) (*model.PostPage, error)
	ListAll(ctx context.Context, q repository.PostQuery) (*model.PostPage, error)
	Featured(ctx context.Context) ([]model.Post, error)
	GetPublished(ctx context.Context, slug string) (*model.Post, []model.Post, error)
	GetByID(ctx context.Context, id string) (*model.Post, error)
	Create(ctx context.Context, in CreatePostInput) (*model.Post, error)
	Update(ctx context.Context, id string, in UpdatePostInput) (*model.Post, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.PostStats, error)
}

type postService struct {
	repo      repository.PostRepository
	uploads   UploadService
	cache     *cache.Client
	publisher events.Publisher
	log       logrus.FieldLogger
}

// NewPostService builds a PostService. cache may be nil; publisher may be events.Nop.
func NewPostService(
	repo repository.PostRepository,
	uploads UploadService,
	cache *cache.Client,
	publisher events.Publisher,
	log logrus.FieldLogger,
) PostService {
	return &postService{
		repo:      repo,
		uploads:   uploads,
		cache:     cache,
		publisher: publisher,
		log:       log,
	}
}

// ListPublished lists published posts only, whatever status q asks for.
func (s *postService) ListPublished(ctx context.Context, q repository.PostQuery) (*model.PostPage, error) {
	q.Status = model.StatusPublished
	return s.repo.List(ctx, q)
}

// ListAll lists posts in any status, optionally filtered by q.Status.
func (s *postService) ListAll(ctx context.Context, q repository.PostQuery) (*model.PostPage, error) {
	return s.repo.List(ctx, q)
}

func (s *postService) Featured(ctx context.Context) ([]model.Post, error) {
	var cached []model.Post
	if s.cache.GetJSON(ctx, cache.KeyFeaturedPosts, &cached) {
		return cached, nil
	}
	posts, err := s.repo.Featured(ctx, repository.FeaturedLimit)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, cache.KeyFeaturedPosts, posts, cache.DefaultTTL)
	return posts, nil
}

// GetPublished returns a published post by slug and its related posts, counting
// one view. A failed view increment is logged, not returned.
func (s *postService) GetPublished(ctx context.Context, slug string) (*model.Post, []model.Post, error) {
	post, err := s.repo.FindBySlug(ctx, slug, true)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.IncrementViews(ctx, post.ID); err != nil {
		s.log.WithError(err).WithField("post_id", post.ID).Warn("failed to increment views")
	} else {
		post.Views++
	}

	related, err := s.repo.Related(ctx, post, repository.RelatedLimit)
	if err != nil {
		return nil, nil, err
	}
	return post, related, nil
}

func (s *postService) GetByID(ctx context.Context, id string) (*model.Post, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores the optional image first and removes it again if the post
// cannot be written.
func (s *postService) Create(ctx context.Context, in CreatePostInput) (*model.Post, error) {
	post := &model.Post{
		Title:   in.Title,
		Slug:    in.Slug,
		Excerpt: in.Excerpt,
		Content: in.Content,
		Author:  in.Author,
		Status:  in.Status,
		SEO:     in.SEO,
	}

	if in.Image != nil {
		obj, err := s.uploads.SaveImage(ctx, "featuredImage", in.Image)
		if err != nil {
			return nil, err
		}
		alt := in.ImageAlt
		if alt == "" {
			alt = in.Title
		}
		post.FeaturedImage = model.FeaturedImage{URL: obj.URL, Filename: obj.Filename, Alt: alt}
	}

	if err := s.repo.Create(ctx, post, in.CategoryIDs, in.TagIDs); err != nil {
		s.discardImage(ctx, post.FeaturedImage.Filename)
		return nil, err
	}

	s.invalidate(ctx)
	s.publish(ctx, events.PostCreated, post)
	if post.Status == model.StatusPublished {
		s.publish(ctx, events.PostPublished, post)
	}
	return post, nil
}

// Update applies the patch. A replacement image supersedes the old one, which is
// deleted once the update has been written.
func (s *postService) Update(ctx context.Context, id string, in UpdatePostInput) (*model.Post, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := in.Patch
	var newImage string
	switch {
	case in.Image != nil:
		obj, err := s.uploads.SaveImage(ctx, "featuredImage", in.Image)
		if err != nil {
			return nil, err
		}
		alt := existing.Title
		if patch.Title != nil {
			alt = *patch.Title
		}
		if in.ImageAlt != nil && *in.ImageAlt != "" {
			alt = *in.ImageAlt
		}
		patch.FeaturedImage = &model.FeaturedImage{URL: obj.URL, Filename: obj.Filename, Alt: alt}
		newImage = obj.Filename
	case in.ImageAlt != nil && existing.FeaturedImage.URL != "":
		img := existing.FeaturedImage
		img.Alt = *in.ImageAlt
		patch.FeaturedImage = &img
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		s.discardImage(ctx, newImage)
		return nil, err
	}
	if newImage != "" {
		s.discardImage(ctx, existing.FeaturedImage.Filename)
	}

	s.invalidate(ctx)
	s.publish(ctx, events.PostUpdated, updated)
	if existing.PublishedAt == nil && updated.PublishedAt != nil {
		s.publish(ctx, events.PostPublished, updated)
	}
	return updated, nil
}

func (s *postService) Delete(ctx context.Context, id string) error {
	post, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.discardImage(ctx, post.FeaturedImage.Filename)
	s.invalidate(ctx)
	s.publish(ctx, events.PostDeleted, post)
	return nil
}

func (s *postService) Stats(ctx context.Context) (*model.PostStats, error) {
	var cached model.PostStats
	if s.cache.GetJSON(ctx, cache.KeyPostStats, &cached) {
		return &cached, nil
	}
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, cache.KeyPostStats, stats, cache.DefaultTTL)
	return stats, nil
}

// invalidate drops every cached read model a post mutation can change,
// including taxonomy post counts.
func (s *postService) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, cache.KeyFeaturedPosts, cache.KeyPostStats, cache.KeyActiveCategories, cache.KeyActiveTags)
}

func (s *postService) discardImage(ctx context.Context, filename string) {
	if filename == "" {
		return
	}
	if err := s.uploads.Delete(ctx, filename); err != nil {
		s.log.WithError(err).WithField("filename", filename).Warn("failed to delete image")
	}
}

func (s *postService) publish(ctx context.Context, eventType string, post *model.Post) {
	err := s.publisher.Publish(ctx, events.Event{
		Type:       eventType,
		PostID:     post.ID,
		Slug:       post.Slug,
		Title:      post.Title,
		Status:     string(post.Status),
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event":   eventType,
			"post_id": post.ID,
		}).Warn("failed to publish event")
	}
}
