package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLocal_SaveAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocal(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	obj, err := store.Save(ctx, "image-1.png", strings.NewReader("pngdata"), 7, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "image-1.png", obj.Filename)
	assert.Equal(t, "/uploads/image-1.png", obj.URL)
	assert.Equal(t, int64(7), obj.Size)

	data, err := os.ReadFile(filepath.Join(dir, "image-1.png"))
	require.NoError(t, err)
	assert.Equal(t, "pngdata", string(data))

	_, err = store.Save(ctx, "image-1.png", strings.NewReader("again"), 5, "image/png")
	assert.Error(t, err, "existing files are never overwritten")

	require.NoError(t, store.Delete(ctx, "image-1.png"))
	_, err = os.Stat(filepath.Join(dir, "image-1.png"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Delete(ctx, "image-1.png"))
}

func TestLocal_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "/uploads")
	require.NoError(t, err)

	obj, err := store.Save(context.Background(), "../../etc/evil.png", strings.NewReader("x"), 1, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "evil.png", obj.Filename)
	_, err = os.Stat(filepath.Join(dir, "evil.png"))
	assert.NoError(t, err)

	_, err = store.Save(context.Background(), "..", strings.NewReader("x"), 1, "image/png")
	assert.Error(t, err)
}

type mockObjectAPI struct {
	mock.Mock
}

func (m *mockObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *mockObjectAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func TestS3_Save(t *testing.T) {
	client := new(mockObjectAPI)
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return aws.ToString(in.Bucket) == "media" &&
			aws.ToString(in.Key) == "uploads/image-1.webp" &&
			aws.ToString(in.ContentType) == "image/webp" &&
			string(body) == "webp"
	})).Return(&s3.PutObjectOutput{}, nil)

	store := NewS3WithClient(client, "media", "uploads/", "https://cdn.example.com")
	obj, err := store.Save(context.Background(), "image-1.webp", strings.NewReader("webp"), 4, "image/webp")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/image-1.webp", obj.URL)
	assert.Equal(t, "image-1.webp", obj.Filename)
	client.AssertExpectations(t)
}

func TestS3_SaveError(t *testing.T) {
	client := new(mockObjectAPI)
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	store := NewS3WithClient(client, "media", "", "https://cdn.example.com")
	_, err := store.Save(context.Background(), "a.png", strings.NewReader("x"), 1, "image/png")
	assert.ErrorContains(t, err, "access denied")
}

func TestS3_Delete(t *testing.T) {
	client := new(mockObjectAPI)
	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Key) == "img/a.png"
	})).Return(&s3.DeleteObjectOutput{}, nil)

	store := NewS3WithClient(client, "media", "img", "https://cdn.example.com")
	require.NoError(t, store.Delete(context.Background(), "a.png"))
	client.AssertExpectations(t)
}
