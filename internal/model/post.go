package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s PostStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Author is the byline stored with a post.
type Author struct {
	Name   string `json:"name" gorm:"size:100;not null;index"`
	Email  string `json:"email,omitempty" gorm:"size:255"`
	UserID string `json:"userId,omitempty" gorm:"size:36"`
}

// FeaturedImage points at an uploaded image.
type FeaturedImage struct {
	URL      string `json:"url,omitempty" gorm:"size:500"`
	Filename string `json:"filename,omitempty" gorm:"size:255"`
	Alt      string `json:"alt,omitempty" gorm:"size:255"`
}

// SEO holds optional search-engine metadata.
type SEO struct {
	MetaTitle       string                      `json:"metaTitle,omitempty" gorm:"size:200"`
	MetaDescription string                      `json:"metaDescription,omitempty" gorm:"size:500"`
	Keywords        datatypes.JSONSlice[string] `json:"keywords,omitempty"`
}

// Post is a blog article.
type Post struct {
	ID            string        `json:"id" gorm:"type:char(36);primaryKey"`
	Title         string        `json:"title" gorm:"size:200;not null"`
	Slug          string        `json:"slug" gorm:"size:191;not null;uniqueIndex"`
	Excerpt       string        `json:"excerpt" gorm:"size:500;not null"`
	Content       string        `json:"content" gorm:"type:text;not null"`
	Author        Author        `json:"author" gorm:"embedded;embeddedPrefix:author_"`
	FeaturedImage FeaturedImage `json:"featuredImage" gorm:"embedded;embeddedPrefix:featured_image_"`
	Categories    []Category    `json:"categories" gorm:"many2many:post_categories"`
	Tags          []Tag         `json:"tags" gorm:"many2many:post_tags"`
	Status        PostStatus    `json:"status" gorm:"size:20;not null;default:'draft';index:idx_posts_status_published,priority:1"`
	Views         int64         `json:"views" gorm:"not null;default:0"`
	Likes         int64         `json:"likes" gorm:"not null;default:0"`
	PublishedAt   *time.Time    `json:"publishedAt,omitempty" gorm:"index:idx_posts_status_published,priority:2"`
	ReadingTime   int           `json:"readingTime" gorm:"not null;default:0"`
	SEO           SEO           `json:"seo" gorm:"embedded;embeddedPrefix:seo_"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// CategoryIDs returns the ids of the loaded categories.
func (p *Post) CategoryIDs() []string {
	ids := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// TagIDs returns the ids of the loaded tags.
func (p *Post) TagIDs() []string {
	ids := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// PostPatch is a partial update. Nil fields are left unchanged; a nil id slice
// leaves the association untouched while an empty one clears it. The owning
// author id is never patched.
type PostPatch struct {
	Title         *string
	Excerpt       *string
	Content       *string
	AuthorName    *string
	AuthorEmail   *string
	FeaturedImage *FeaturedImage
	Status        *PostStatus
	SEOMetaTitle  *string
	SEODesc       *string
	SEOKeywords   []string
	CategoryIDs   []string
	TagIDs        []string
}

// PostStats summarises the post collection.
type PostStats struct {
	TotalPosts     int64 `json:"totalPosts"`
	PublishedPosts int64 `json:"publishedPosts"`
	DraftPosts     int64 `json:"draftPosts"`
	TotalViews     int64 `json:"totalViews"`
}
