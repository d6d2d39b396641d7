package repository

import (
	"strings"

	"gorm.io/gorm"

	"blogcms/internal/db"
	apperrors "blogcms/internal/errors"
	"blogcms/internal/model"
)

// Listing bounds.
const (
	DefaultPage     = 1
	DefaultLimit    = 10
	MaxLimit        = 50
	MinSearchLength = 2
	FeaturedLimit   = 5
	RelatedLimit    = 4
	DefaultSort     = "-publishedAt"
)

var sortColumns = map[string]string{
	"publishedAt": "published_at",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"views":       "views",
	"likes":       "likes",
	"title":       "title",
	"readingTime": "reading_time",
}

// Sort is a whitelisted sort column with its direction.
type Sort struct {
	Column string
	Desc   bool
}

// OrderBy renders the ORDER BY expression for the posts table.
func (s Sort) OrderBy() string {
	if s.Desc {
		return "posts." + s.Column + " DESC"
	}
	return "posts." + s.Column + " ASC"
}

// ParseSort parses "field" or "-field". An empty string selects DefaultSort.
func ParseSort(s string) (Sort, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultSort
	}
	desc := strings.HasPrefix(s, "-")
	field := strings.TrimPrefix(s, "-")
	column, ok := sortColumns[field]
	if !ok {
		return Sort{}, apperrors.Validation("invalid sort field",
			apperrors.FieldError{Field: "sortBy", Message: "unsupported sort field " + field})
	}
	return Sort{Column: column, Desc: desc}, nil
}

// PostQuery describes a post listing. An empty Status matches every status.
type PostQuery struct {
	Status     model.PostStatus
	CategoryID string
	TagID      string
	Search     string
	Sort       string
	Page       int
	Limit      int
}

// Normalize applies defaults and clamps page and limit into range.
func (q PostQuery) Normalize() PostQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Validate checks the fields that cannot be clamped.
func (q PostQuery) Validate() error {
	var fields []apperrors.FieldError
	if q.Status != "" && !q.Status.Valid() {
		fields = append(fields, apperrors.FieldError{Field: "status", Message: "must be one of draft, published, archived"})
	}
	if q.Search != "" && len([]rune(q.Search)) < MinSearchLength {
		fields = append(fields, apperrors.FieldError{Field: "search", Message: "must be at least 2 characters"})
	}
	if _, err := ParseSort(q.Sort); err != nil {
		fields = append(fields, apperrors.FieldError{Field: "sortBy", Message: "unsupported sort field"})
	}
	if len(fields) > 0 {
		return apperrors.Validation("invalid query", fields...)
	}
	return nil
}

// Offset is the number of rows skipped for the query's page.
func (q PostQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// applyFilters adds the WHERE conditions of q to tx. Pagination and ordering are
// left to the caller so the same filter can feed both the count and the page.
func applyFilters(tx *gorm.DB, q PostQuery) *gorm.DB {
	if q.Status != "" {
		tx = tx.Where("posts.status = ?", q.Status)
	}
	if q.CategoryID != "" {
		tx = tx.Where("posts.id IN (SELECT post_id FROM post_categories WHERE category_id = ?)", q.CategoryID)
	}
	if q.TagID != "" {
		tx = tx.Where("posts.id IN (SELECT post_id FROM post_tags WHERE tag_id = ?)", q.TagID)
	}
	if q.Search != "" {
		sql, args := searchCondition(tx.Dialector.Name(), q.Search)
		tx = tx.Where(sql, args...)
	}
	return tx
}

func searchCondition(dialect, term string) (string, []any) {
	switch dialect {
	case db.DriverMySQL:
		return "MATCH(posts.title, posts.excerpt, posts.content) AGAINST (? IN NATURAL LANGUAGE MODE)", []any{term}
	case db.DriverPostgres:
		return db.PostgresSearchVector + " @@ plainto_tsquery('simple', ?)", []any{term}
	default:
		pattern := "%" + escapeLike(term) + "%"
		return `(posts.title LIKE ? ESCAPE '\' OR posts.excerpt LIKE ? ESCAPE '\' OR posts.content LIKE ? ESCAPE '\')`,
			[]any{pattern, pattern, pattern}
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// relatedCondition matches posts sharing at least one of the given categories or tags.
func relatedCondition(categoryIDs, tagIDs []string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if len(categoryIDs) > 0 {
		conds = append(conds, "posts.id IN (SELECT post_id FROM post_categories WHERE category_id IN ?)")
		args = append(args, categoryIDs)
	}
	if len(tagIDs) > 0 {
		conds = append(conds, "posts.id IN (SELECT post_id FROM post_tags WHERE tag_id IN ?)")
		args = append(args, tagIDs)
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}
