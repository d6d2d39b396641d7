package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blogcms/internal/db"
	apperrors "blogcms/internal/errors"
	"blogcms/internal/events"
	"blogcms/internal/model"
	"blogcms/internal/repository"
	"blogcms/internal/storage"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)
	gifBytes = append([]byte("GIF89a"), make([]byte, 64)...)
)

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return nil
}

func eventOfType(eventType string) any {
	return mock.MatchedBy(func(e events.Event) bool { return e.Type == eventType })
}

func fileHeader(t *testing.T, field, filename string, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}

type fixture struct {
	posts      PostService
	categories CategoryService
	tags       TagService
	uploadDir  string
	publisher  *MockPublisher
	logHook    *logtest.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := db.Open(db.DriverSQLite, ":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	dir := t.TempDir()
	local, err := storage.NewLocal(dir, "/uploads")
	require.NoError(t, err)

	logger, hook := logtest.NewNullLogger()
	publisher := new(MockPublisher)

	return &fixture{
		posts:      NewPostService(repository.NewPostRepository(gdb), NewUploadService(local), nil, publisher, logger),
		categories: NewCategoryService(repository.NewCategoryRepository(gdb), nil),
		tags:       NewTagService(repository.NewTagRepository(gdb), nil),
		uploadDir:  dir,
		publisher:  publisher,
		logHook:    hook,
	}
}

func (f *fixture) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.uploadDir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func postInput(title string, status model.PostStatus) CreatePostInput {
	return CreatePostInput{
		Title:   title,
		Excerpt: "excerpt",
		Content: "some words in the body",
		Author:  model.Author{Name: "Writer"},
		Status:  status,
	}
}

func TestUploadService_SaveImage(t *testing.T) {
	dir := t.TempDir()
	local, err := storage.NewLocal(dir, "/uploads")
	require.NoError(t, err)
	svc := NewUploadService(local)
	ctx := context.Background()

	obj, err := svc.SaveImage(ctx, "image", fileHeader(t, "image", "photo.PNG", pngBytes))
	require.NoError(t, err)
	assert.Regexp(t, `^image-\d+-\d+\.png$`, obj.Filename)
	assert.Equal(t, "/uploads/"+obj.Filename, obj.URL)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(len(pngBytes)), obj.Size)
	_, err = os.Stat(filepath.Join(dir, obj.Filename))
	assert.NoError(t, err)

	// the extension follows the sniffed type, not the client's name
	obj, err = svc.SaveImage(ctx, "image", fileHeader(t, "image", "looks.jpg", gifBytes))
	require.NoError(t, err)
	assert.Equal(t, "image/gif", obj.ContentType)
	assert.Equal(t, ".gif", filepath.Ext(obj.Filename))

	require.NoError(t, svc.Delete(ctx, obj.Filename))
	_, err = os.Stat(filepath.Join(dir, obj.Filename))
	assert.True(t, os.IsNotExist(err))
}

func TestUploadService_Rejects(t *testing.T) {
	local, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)
	svc := NewUploadService(local)
	ctx := context.Background()

	tests := []struct {
		name string
		file *multipart.FileHeader
	}{
		{"missing", nil},
		{"too large", &multipart.FileHeader{Filename: "big.png", Size: MaxUploadSize + 1}},
		{"not an image", fileHeader(t, "image", "notes.png", []byte("just some text, not pixels"))},
		{"empty", &multipart.FileHeader{Filename: "empty.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveImage(ctx, "image", tt.file)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestPostService_CreateWithImageAndEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.publisher.On("Publish", mock.Anything, eventOfType(events.PostCreated)).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, eventOfType(events.PostPublished)).Return(nil).Once()

	in := postInput("Launch Day", model.StatusPublished)
	in.Image = fileHeader(t, "featuredImage", "cover.png", pngBytes)
	post, err := f.posts.Create(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "launch-day", post.Slug)
	assert.Equal(t, "Launch Day", post.FeaturedImage.Alt)
	assert.Regexp(t, `^/uploads/featuredImage-\d+-\d+\.png$`, post.FeaturedImage.URL)
	assert.Equal(t, []string{post.FeaturedImage.Filename}, f.files(t))
	f.publisher.AssertExpectations(t)
}

func TestPostService_CreateFailureRemovesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	_, err := f.posts.Create(ctx, postInput("Taken", model.StatusDraft))
	require.NoError(t, err)

	in := postInput("Taken", model.StatusDraft)
	in.Image = fileHeader(t, "featuredImage", "cover.png", pngBytes)
	_, err = f.posts.Create(ctx, in)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateKey)
	assert.Empty(t, f.files(t))
}

func TestPostService_UpdatePublishesOnceAndReplacesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.publisher.On("Publish", mock.Anything, eventOfType(events.PostCreated)).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, eventOfType(events.PostUpdated)).Return(nil).Twice()
	f.publisher.On("Publish", mock.Anything, eventOfType(events.PostPublished)).Return(nil).Once()

	in := postInput("Work In Progress", model.StatusDraft)
	in.Image = fileHeader(t, "featuredImage", "old.png", pngBytes)
	post, err := f.posts.Create(ctx, in)
	require.NoError(t, err)
	oldImage := post.FeaturedImage.Filename

	published := model.StatusPublished
	alt := "new cover"
	updated, err := f.posts.Update(ctx, post.ID, UpdatePostInput{
		Patch:    model.PostPatch{Status: &published},
		Image:    fileHeader(t, "featuredImage", "new.gif", gifBytes),
		ImageAlt: &alt,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.PublishedAt)
	assert.Equal(t, "new cover", updated.FeaturedImage.Alt)
	assert.NotEqual(t, oldImage, updated.FeaturedImage.Filename)
	assert.Equal(t, []string{updated.FeaturedImage.Filename}, f.files(t))

	title := "Finished"
	again, err := f.posts.Update(ctx, post.ID, UpdatePostInput{Patch: model.PostPatch{Title: &title}})
	require.NoError(t, err)
	assert.True(t, updated.PublishedAt.Equal(*again.PublishedAt))
	assert.Equal(t, updated.FeaturedImage, again.FeaturedImage)

	f.publisher.AssertExpectations(t)
}

func TestPostService_GetPublishedCountsViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	tag, err := f.tags.Create(ctx, &model.Tag{Name: "Unity", IsActive: true})
	require.NoError(t, err)

	a := postInput("First", model.StatusPublished)
	a.TagIDs = []string{tag.ID}
	_, err = f.posts.Create(ctx, a)
	require.NoError(t, err)
	b := postInput("Second", model.StatusPublished)
	b.TagIDs = []string{tag.ID}
	second, err := f.posts.Create(ctx, b)
	require.NoError(t, err)
	_, err = f.posts.Create(ctx, postInput("Hidden", model.StatusDraft))
	require.NoError(t, err)

	post, related, err := f.posts.GetPublished(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.Views)
	require.Len(t, related, 1)
	assert.Equal(t, second.ID, related[0].ID)

	post, _, err = f.posts.GetPublished(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, int64(2), post.Views)

	_, _, err = f.posts.GetPublished(ctx, "hidden")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	stats, err := f.posts.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalPosts)
	assert.Equal(t, int64(2), stats.TotalViews)

	page, err := f.posts.ListPublished(ctx, repository.PostQuery{Status: model.StatusDraft})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Pagination.TotalPosts)
	page, err = f.posts.ListAll(ctx, repository.PostQuery{Status: model.StatusDraft})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Pagination.TotalPosts)
}

func TestPostService_DeleteRemovesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.publisher.On("Publish", mock.Anything, eventOfType(events.PostCreated)).Return(nil)
	f.publisher.On("Publish", mock.Anything, eventOfType(events.PostDeleted)).Return(nil).Once()

	in := postInput("Ephemeral", model.StatusDraft)
	in.Image = fileHeader(t, "featuredImage", "x.png", pngBytes)
	post, err := f.posts.Create(ctx, in)
	require.NoError(t, err)

	require.NoError(t, f.posts.Delete(ctx, post.ID))
	assert.Empty(t, f.files(t))
	assert.ErrorIs(t, f.posts.Delete(ctx, post.ID), apperrors.ErrNotFound)
	f.publisher.AssertExpectations(t)
}

func TestPostService_PublisherFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	post, err := f.posts.Create(context.Background(), postInput("Resilient", model.StatusDraft))
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)

	entry := f.logHook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, events.PostCreated, entry.Data["event"])
}

func TestCategoryService_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat, err := f.categories.Create(ctx, &model.Category{Name: "AI & Machine Learning", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "ai-machine-learning", cat.Slug)

	list, err := f.categories.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got, err := f.categories.GetBySlug(ctx, "ai-machine-learning")
	require.NoError(t, err)
	assert.Equal(t, cat.ID, got.ID)

	color := "#000000"
	updated, err := f.categories.Update(ctx, cat.ID, model.CategoryPatch{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, color, updated.Color)

	require.NoError(t, f.categories.Delete(ctx, cat.ID))
	_, err = f.categories.GetBySlug(ctx, "ai-machine-learning")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
