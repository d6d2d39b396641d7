package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"blogcms/internal/db"
	apperrors "blogcms/internal/errors"
	"blogcms/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(db.DriverSQLite, ":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

// steppingClock returns a clock that advances one minute per call.
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func newPostRepo(gdb *gorm.DB) *postRepository {
	return &postRepository{db: gdb, now: steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))}
}

func newPost(title string, status model.PostStatus) *model.Post {
	return &model.Post{
		Title:   title,
		Excerpt: "excerpt of " + title,
		Content: "body text for " + title,
		Author:  model.Author{Name: "Writer", Email: "writer@example.com"},
		Status:  status,
	}
}

func mustCategory(t *testing.T, repo CategoryRepository, name string) *model.Category {
	t.Helper()
	c := &model.Category{Name: name, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func mustTag(t *testing.T, repo TagRepository, name string) *model.Tag {
	t.Helper()
	tag := &model.Tag{Name: name, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), tag))
	return tag
}

func countRows(t *testing.T, gdb *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Table(table).Count(&n).Error)
	return n
}

func TestPostRepository_CreateDerivesFields(t *testing.T) {
	gdb := newTestDB(t)
	repo := newPostRepo(gdb)
	ctx := context.Background()

	draft := newPost("Hello World", model.StatusDraft)
	draft.Content = strings.Repeat("word ", 401)
	require.NoError(t, repo.Create(ctx, draft, nil, nil))

	assert.NotEmpty(t, draft.ID)
	assert.Equal(t, "hello-world", draft.Slug)
	assert.Equal(t, 3, draft.ReadingTime)
	assert.Nil(t, draft.PublishedAt)

	published := newPost("راهنمای کامل Unity", model.StatusPublished)
	require.NoError(t, repo.Create(ctx, published, nil, nil))
	assert.Equal(t, "راهنمای-کامل-unity", published.Slug)
	require.NotNil(t, published.PublishedAt)

	noStatus := newPost("Defaults", "")
	require.NoError(t, repo.Create(ctx, noStatus, nil, nil))
	assert.Equal(t, model.StatusDraft, noStatus.Status)

	explicit := newPost("Anything", model.StatusDraft)
	explicit.Slug = "My Custom Slug"
	require.NoError(t, repo.Create(ctx, explicit, nil, nil))
	assert.Equal(t, "my-custom-slug", explicit.Slug)
}

func TestPostRepository_CreateDuplicateSlugLeavesStoreUnchanged(t *testing.T) {
	gdb := newTestDB(t)
	repo := newPostRepo(gdb)
	categories := NewCategoryRepository(gdb)
	ctx := context.Background()

	cat := mustCategory(t, categories, "Go")
	require.NoError(t, repo.Create(ctx, newPost("Same Title", model.StatusPublished), []string{cat.ID}, nil))

	dup := newPost("Same Title", model.StatusPublished)
	err := repo.Create(ctx, dup, []string{cat.ID}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateKey)
	assert.Empty(t, dup.ID)
	assert.Equal(t, int64(1), countRows(t, gdb, "posts"))
	assert.Equal(t, int64(1), countRows(t, gdb, "post_categories"))
}

func TestPostRepository_CreateRejectsUnknownReferences(t *testing.T) {
	gdb := newTestDB(t)
	repo := newPostRepo(gdb)
	ctx := context.Background()

	err := repo.Create(ctx, newPost("Orphan", model.StatusDraft), []string{"00000000-0000-0000-0000-000000000000"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = repo.Create(ctx, newPost("Orphan", model.StatusDraft), nil, []string{"00000000-0000-0000-0000-000000000000"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	assert.Equal(t, int64(0), countRows(t, gdb, "posts"))
}

func TestPostRepository_UpdatePublishTransition(t *testing.T) {
	gdb := newTestDB(t)
	repo := newPostRepo(gdb)
	ctx := context.Background()

	post := newPost("Draft First", model.StatusDraft)
	require.NoError(t, repo.Create(ctx, post, nil, nil))
	require.Nil(t, post.PublishedAt)

	published := model.StatusPublished
	updated, err := repo.Update(ctx, post.ID, model.PostPatch{Status: &published})
	require.NoError(t, err)
	require.NotNil(t, updated.PublishedAt)
	firstPublish := *updated.PublishedAt

	title := "Draft First, Renamed"
	body := strings.Repeat("word ", 250)
	updated, err = repo.Update(ctx, post.ID, model.PostPatch{Title: &title, Content: &body})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "draft-first", updated.Slug)
	assert.Equal(t, 2, updated.ReadingTime)
	require.NotNil(t, updated.PublishedAt)
	assert.True(t, firstPublish.Equal(*updated.PublishedAt))

	archived := model.StatusArchived
	_, err = repo.Update(ctx, post.ID, model.PostPatch{Status: &archived})
	require.NoError(t, err)
	updated, err = repo.Update(ctx, post.ID, model.PostPatch{Status: &published})
	require.NoError(t, err)
	assert.True(t, firstPublish.Equal(*updated.PublishedAt))

	stored, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, firstPublish.Equal(*stored.PublishedAt))
}

func TestPostRepository_UpdateReplacesAssociationsOnlyWhenGiven(t *testing.T) {
	gdb := newTestDB(t)
	repo := newPostRepo(gdb)
	categories := NewCategoryRepository(gdb)
	tags := NewTagRepository(gdb)
	ctx := context.Background()

	goCat := mustCategory(t, categories, "Go")
	dbCat := mustCategory(t, categories, "Databases")
	tag := mustTag(t, tags, "sql")

	post := newPost("Associations", model.StatusDraft)
	require.NoError(t, repo.Create(ctx, post, []string{goCat.ID}, []string{tag.ID}))

	title := "Associations v2"
	updated, err := repo.Update(ctx, post.ID, model.PostPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, []string{goCat.ID}, updated.CategoryIDs())
	assert.Equal(t, []string{tag.ID}, updated.TagIDs())

	updated, err = repo.Update(ctx, post.ID, model.PostPatch{CategoryIDs: []string{dbCat.ID}, TagIDs: []string{}})
	require.NoError(t, err)
	assert.Equal(t, []string{dbCat.ID}, updated.CategoryIDs())
	assert.Empty(t, updated.Tags)

	stored, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{dbCat.ID}, stored.CategoryIDs())
	assert.Empty(t, stored.Tags)
}

func TestPostRepository_UpdatePatchesNestedFieldsIndividually(t *testing.T) {
	gdb := newTestDB(t)
	repo := newPostRepo(gdb)
	ctx := context.Background()

	post := newPost("Nested", model.StatusDraft)
	post.Author.UserID = "user-1"
	post.SEO = model.SEO{MetaTitle: "Title", MetaDescription: "Desc", Keywords: []string{"go"}}
	require.NoError(t, repo.Create(ctx, post, nil, nil))

	ptr := func(s string) *string { return &s }
	tests := []struct {
		name       string
		patch      model.PostPatch
		wantAuthor model.Author
		wantSEO    model.SEO
	}{
		{
			name:       "author name",
			patch:      model.PostPatch{AuthorName: ptr("Pen Name")},
			wantAuthor: model.Author{Name: "Pen Name", Email: "writer@example.com", UserID: "user-1"},
			wantSEO:    model.SEO{MetaTitle: "Title", MetaDescription: "Desc", Keywords: []string{"go"}},
		},
		{
			name:       "author email",
			patch:      model.PostPatch{AuthorEmail: ptr("pen@example.com")},
			wantAuthor: model.Author{Name: "Pen Name", Email: "pen@example.com", UserID: "user-1"},
			wantSEO:    model.SEO{MetaTitle: "Title", MetaDescription: "Desc", Keywords: []string{"go"}},
		},
		{
			name:       "meta title",
			patch:      model.PostPatch{SEOMetaTitle: ptr("Meta")},
			wantAuthor: model.Author{Name: "Pen Name", Email: "pen@example.com", UserID: "user-1"},
			wantSEO:    model.SEO{MetaTitle: "Meta", MetaDescription: "Desc", Keywords: []string{"go"}},
		},
		{
			name:       "keywords",
			patch:      model.PostPatch{SEOKeywords: []string{"go", "sql"}},
			wantAuthor: model.Author{Name: "Pen Name", Email: "pen@example.com", UserID: "user-1"},
			wantSEO:    model.SEO{MetaTitle: "Meta", MetaDescription: "Desc", Keywords: []string{"go", "sql"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Update(ctx, post.ID, tt.patch)
			require.NoError(t, err)

			stored, err := repo.FindByID(ctx, post.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAuthor, stored.Author)
			assert.Equal(t, tt.wantSEO.MetaTitle, stored.SEO.MetaTitle)
			assert.Equal(t, tt.wantSEO.MetaDescription, stored.SEO.MetaDescription)
			assert.Equal(t, []string(tt.wantSEO.Keywords), []string(stored.SEO.Keywords))
		})
	}
}

func TestPostRepository_NotFound(t *testing.T) {
	gdb := newTestDB(t)
	repo := newPostRepo(gdb)
	ctx := context.Background()
	missing := "00000000-0000-0000-0000-000000000000"

	title := "x"
	_, err := repo.Update(ctx, missing, model.PostPatch{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = repo.Delete(ctx, missing)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = repo.FindBySlug(ctx, "nope", true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, repo.IncrementViews(ctx, missing), apperrors.ErrNotFound)
}

func TestPostRepository_FindBySlugPublishedOnly(t *testing.T) {
	gdb := newTestDB(t)
	repo := newPostRepo(gdb)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newPost("Hidden Draft", model.StatusDraft), nil, nil))

	_, err := repo.FindBySlug(ctx, "hidden-draft", true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	post, err := repo.FindBySlug(ctx, "hidden-draft", false)
	require.NoError(t, err)
	assert.Equal(t, "Hidden Draft", post.Title)
}

func TestPostRepository_DeleteRemovesJoinRows(t *testing.T) {
	gdb := newTestDB(t)
	repo := newPostRepo(gdb)
	ctx := context.Background()

	cat := mustCategory(t, NewCategoryRepository(gdb), "Go")
	tag := mustTag(t, NewTagRepository(gdb), "go")
	post := newPost("Short Lived", model.StatusPublished)
	require.NoError(t, repo.Create(ctx, post, []string{cat.ID}, []string{tag.ID}))

	deleted, err := repo.Delete(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, deleted.ID)
	assert.Equal(t, int64(0), countRows(t, gdb, "posts"))
	assert.Equal(t, int64(0), countRows(t, gdb, "post_categories"))
	assert.Equal(t, int64(0), countRows(t, gdb, "post_tags"))
	assert.Equal(t, int64(1), countRows(t, gdb, "categories"))
}

func TestPostRepository_ListPagination(t *testing.T) {
	gdb := newTestDB(t)
	repo := newPostRepo(gdb)
	ctx := context.Background()

	for i := 0; i < 23; i++ {
		require.NoError(t, repo.Create(ctx, newPost(fmt.Sprintf("Post %02d", i), model.StatusPublished), nil, nil))
	}
	require.NoError(t, repo.Create(ctx, newPost("Unpublished", model.StatusDraft), nil, nil))

	tests := []struct {
		page      int
		wantCount int
		wantNext  bool
		wantPrev  bool
	}{
		{1, 10, true, false},
		{3, 3, false, true},
		{4, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			page, err := repo.List(ctx, PostQuery{Status: model.StatusPublished, Page: tt.page, Limit: 10})
			require.NoError(t, err)
			assert.Len(t, page.Posts, tt.wantCount)
			assert.Equal(t, int64(23), page.Pagination.TotalPosts)
			assert.Equal(t, 3, page.Pagination.TotalPages)
			assert.Equal(t, tt.page, page.Pagination.CurrentPage)
			assert.Equal(t, tt.wantNext, page.Pagination.HasNextPage)
			assert.Equal(t, tt.wantPrev, page.Pagination.HasPrevPage)
		})
	}

	page, err := repo.List(ctx, PostQuery{Status: model.StatusPublished})
	require.NoError(t, err)
	require.Len(t, page.Posts, DefaultLimit)
	// newest first by default
	assert.Equal(t, "Post 22", page.Posts[0].Title)

	page, err = repo.List(ctx, PostQuery{Status: model.StatusPublished, Sort: "title", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, "Post 00", page.Posts[0].Title)
	assert.Equal(t, "Post 01", page.Posts[1].Title)

	all, err := repo.List(ctx, PostQuery{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(24), all.Pagination.TotalPosts)
}

func TestPostRepository_ListFilters(t *testing.T) {
	gdb := newTestDB(t)
	repo := newPostRepo(gdb)
	categories := NewCategoryRepository(gdb)
	tags := NewTagRepository(gdb)
	ctx := context.Background()

	unity := mustCategory(t, categories, "Unity Development")
	trading := mustCategory(t, categories, "MQ5 & Trading")
	mobile := mustTag(t, tags, "Mobile")

	a := newPost("Unity mobile performance", model.StatusPublished)
	require.NoError(t, repo.Create(ctx, a, []string{unity.ID}, []string{mobile.ID}))
	b := newPost("Unity shaders", model.StatusPublished)
	require.NoError(t, repo.Create(ctx, b, []string{unity.ID}, nil))
	c := newPost("Expert advisors", model.StatusPublished)
	c.Content = "building an expert advisor in MetaTrader"
	require.NoError(t, repo.Create(ctx, c, []string{trading.ID}, []string{mobile.ID}))

	titles := func(q PostQuery) []string {
		t.Helper()
		page, err := repo.List(ctx, q)
		require.NoError(t, err)
		out := make([]string, 0, len(page.Posts))
		for _, p := range page.Posts {
			out = append(out, p.Title)
		}
		return out
	}

	assert.ElementsMatch(t, []string{a.Title, b.Title}, titles(PostQuery{CategoryID: unity.ID}))
	assert.ElementsMatch(t, []string{a.Title, c.Title}, titles(PostQuery{TagID: mobile.ID}))
	assert.ElementsMatch(t, []string{a.Title}, titles(PostQuery{CategoryID: unity.ID, TagID: mobile.ID}))
	assert.ElementsMatch(t, []string{c.Title}, titles(PostQuery{Search: "metatrader"}))
	assert.ElementsMatch(t, []string{a.Title, b.Title}, titles(PostQuery{Search: "Unity"}))
	assert.Empty(t, titles(PostQuery{Search: "100%"}))

	_, err := repo.List(ctx, PostQuery{Search: "x"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = repo.List(ctx, PostQuery{Sort: "-password"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPostRepository_FeaturedAndViews(t *testing.T) {
	gdb := newTestDB(t)
	repo := newPostRepo(gdb)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 7; i++ {
		p := newPost(fmt.Sprintf("Featured %d", i), model.StatusPublished)
		require.NoError(t, repo.Create(ctx, p, nil, nil))
		ids = append(ids, p.ID)
		for v := 0; v < i; v++ {
			require.NoError(t, repo.IncrementViews(ctx, p.ID))
		}
	}
	draft := newPost("Popular Draft", model.StatusDraft)
	require.NoError(t, repo.Create(ctx, draft, nil, nil))
	for v := 0; v < 50; v++ {
		require.NoError(t, repo.IncrementViews(ctx, draft.ID))
	}

	featured, err := repo.Featured(ctx, FeaturedLimit)
	require.NoError(t, err)
	require.Len(t, featured, 5)
	assert.Equal(t, ids[6], featured[0].ID)
	assert.Equal(t, int64(6), featured[0].Views)
	for i := 1; i < len(featured); i++ {
		assert.GreaterOrEqual(t, featured[i-1].Views, featured[i].Views)
	}

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), stats.TotalPosts)
	assert.Equal(t, int64(7), stats.PublishedPosts)
	assert.Equal(t, int64(1), stats.DraftPosts)
	assert.Equal(t, int64(21+50), stats.TotalViews)
}

func TestPostRepository_Related(t *testing.T) {
	gdb := newTestDB(t)
	repo := newPostRepo(gdb)
	categories := NewCategoryRepository(gdb)
	tags := NewTagRepository(gdb)
	ctx := context.Background()

	shared := mustTag(t, tags, "Networking")
	other := mustTag(t, tags, "AI")
	cat := mustCategory(t, categories, "Performance Optimization")

	subject := newPost("Subject", model.StatusPublished)
	require.NoError(t, repo.Create(ctx, subject, nil, []string{shared.ID}))
	sibling := newPost("Sibling", model.StatusPublished)
	require.NoError(t, repo.Create(ctx, sibling, nil, []string{shared.ID, other.ID}))
	unrelated := newPost("Unrelated", model.StatusPublished)
	require.NoError(t, repo.Create(ctx, unrelated, []string{cat.ID}, []string{other.ID}))
	draft := newPost("Draft Sibling", model.StatusDraft)
	require.NoError(t, repo.Create(ctx, draft, nil, []string{shared.ID}))

	loaded, err := repo.FindByID(ctx, subject.ID)
	require.NoError(t, err)
	related, err := repo.Related(ctx, loaded, RelatedLimit)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, sibling.ID, related[0].ID)

	lonely := newPost("Lonely", model.StatusPublished)
	require.NoError(t, repo.Create(ctx, lonely, nil, nil))
	related, err = repo.Related(ctx, lonely, RelatedLimit)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestPostRepository_RelatedCappedAndOrdered(t *testing.T) {
	gdb := newTestDB(t)
	repo := newPostRepo(gdb)
	cat := mustCategory(t, NewCategoryRepository(gdb), "Unity Development")
	ctx := context.Background()

	subject := newPost("Subject", model.StatusPublished)
	require.NoError(t, repo.Create(ctx, subject, []string{cat.ID}, nil))
	var last string
	for i := 0; i < 6; i++ {
		p := newPost(fmt.Sprintf("Neighbour %d", i), model.StatusPublished)
		require.NoError(t, repo.Create(ctx, p, []string{cat.ID}, nil))
		last = p.ID
	}

	loaded, err := repo.FindByID(ctx, subject.ID)
	require.NoError(t, err)
	related, err := repo.Related(ctx, loaded, RelatedLimit)
	require.NoError(t, err)
	require.Len(t, related, 4)
	assert.Equal(t, last, related[0].ID)
	for _, p := range related {
		assert.NotEqual(t, subject.ID, p.ID)
	}
}

func TestCategoryRepository_Lifecycle(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewCategoryRepository(gdb)
	posts := newPostRepo(gdb)
	ctx := context.Background()

	cat := &model.Category{Name: "C# Programming", IsActive: true}
	require.NoError(t, repo.Create(ctx, cat))
	assert.Equal(t, "c-programming", cat.Slug)
	assert.Equal(t, model.DefaultCategoryColor, cat.Color)
	assert.Equal(t, model.DefaultCategoryIcon, cat.Icon)

	err := repo.Create(ctx, &model.Category{Name: "C# Programming", IsActive: true})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateKey)

	hidden := &model.Category{Name: "Hidden", IsActive: false}
	require.NoError(t, repo.Create(ctx, hidden))

	require.NoError(t, posts.Create(ctx, newPost("One", model.StatusPublished), []string{cat.ID}, nil))
	require.NoError(t, posts.Create(ctx, newPost("Two", model.StatusDraft), []string{cat.ID}, nil))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, cat.ID, active[0].ID)
	assert.Equal(t, int64(2), active[0].PostCount)

	_, err = repo.FindBySlug(ctx, hidden.Slug, true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	name := "C# & .NET"
	updated, err := repo.Update(ctx, cat.ID, model.CategoryPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "c-programming", updated.Slug)
	assert.Equal(t, int64(2), updated.PostCount)

	require.NoError(t, repo.Delete(ctx, cat.ID))
	assert.Equal(t, int64(0), countRows(t, gdb, "post_categories"))
	assert.Equal(t, int64(2), countRows(t, gdb, "posts"))
	assert.ErrorIs(t, repo.Delete(ctx, cat.ID), apperrors.ErrNotFound)
}

func TestTagRepository_Lifecycle(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewTagRepository(gdb)
	posts := newPostRepo(gdb)
	ctx := context.Background()

	tag := &model.Tag{Name: "Unity", IsActive: true}
	require.NoError(t, repo.Create(ctx, tag))
	assert.Equal(t, "unity", tag.Slug)
	assert.Equal(t, model.DefaultTagColor, tag.Color)

	other := &model.Tag{Name: "unity!", IsActive: true}
	assert.ErrorIs(t, repo.Create(ctx, other), apperrors.ErrDuplicateKey)

	post := newPost("Tagged", model.StatusPublished)
	require.NoError(t, posts.Create(ctx, post, nil, []string{tag.ID}))

	found, err := repo.FindBySlug(ctx, "unity", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.PostCount)

	inactive := false
	_, err = repo.Update(ctx, tag.ID, model.TagPatch{IsActive: &inactive})
	require.NoError(t, err)
	list, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, repo.Delete(ctx, tag.ID))
	stored, err := posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Tags)
}

func TestUserRepository(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewUserRepository(gdb)
	ctx := context.Background()

	user := &model.User{Name: "Admin", Email: "  Admin@Example.COM ", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)

	found, err := repo.FindByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	err = repo.Create(ctx, &model.User{Name: "Dup", Email: "admin@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateKey)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
