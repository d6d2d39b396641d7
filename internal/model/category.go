package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Default presentation values for taxonomy entries.
const (
	DefaultCategoryColor = "#667eea"
	DefaultCategoryIcon  = "fas fa-folder"
	DefaultTagColor      = "#6c757d"
)

// Category groups posts by topic.
type Category struct {
	ID          string    `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Slug        string    `json:"slug" gorm:"size:50;not null;uniqueIndex"`
	Description string    `json:"description,omitempty" gorm:"size:500"`
	Color       string    `json:"color" gorm:"size:20;not null"`
	Icon        string    `json:"icon" gorm:"size:50;not null"`
	IsActive    bool      `json:"isActive" gorm:"not null;index"`
	PostCount   int64     `json:"postCount" gorm:"->;-:migration"` // computed on read
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CategoryPatch is a partial update of a category.
type CategoryPatch struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	IsActive    *bool
}

// Tag labels posts with a keyword.
type Tag struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"size:30;not null;uniqueIndex"`
	Slug      string    `json:"slug" gorm:"size:30;not null;uniqueIndex"`
	Color     string    `json:"color" gorm:"size:20;not null"`
	IsActive  bool      `json:"isActive" gorm:"not null;index"`
	PostCount int64     `json:"postCount" gorm:"->;-:migration"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TagPatch is a partial update of a tag.
type TagPatch struct {
	Name     *string
	Color    *string
	IsActive *bool
}
