package service

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"

	apperrors "blogcms/internal/errors"
	"blogcms/internal/storage"
)

// MaxUploadSize is the largest accepted image, in bytes.
const MaxUploadSize = 5 << 20

// allowedImageTypes maps accepted content types to the extension used on disk.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UploadService validates and stores uploaded images.
type UploadService interface {
	SaveImage(ctx context.Context, field string, file *multipart.FileHeader) (*storage.Object, error)
	Delete(ctx context.Context, filename string) error
}

type uploadService struct {
	store storage.Storage
	now   func() time.Time
}

// NewUploadService creates an upload service over store.
func NewUploadService(store storage.Storage) UploadService {
	return &uploadService{store: store, now: time.Now}
}

// SaveImage checks size and sniffed content type, then stores the file under a
// generated name of the form <field>-<unix millis>-<random><ext>. The extension
// follows the sniffed content type, not the client filename.
func (s *uploadService) SaveImage(ctx context.Context, field string, file *multipart.FileHeader) (*storage.Object, error) {
	if file == nil || file.Size == 0 {
		return nil, apperrors.Validation("no file uploaded",
			apperrors.FieldError{Field: field, Message: "file is required"})
	}
	if file.Size > MaxUploadSize {
		return nil, apperrors.Validation("file too large",
			apperrors.FieldError{Field: field, Message: "file must be 5 MB or smaller"})
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperrors.Internal("open upload", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, apperrors.Internal("detect content type", err)
	}
	var (
		contentType string
		ext         string
	)
	for allowed, e := range allowedImageTypes {
		if mtype.Is(allowed) {
			contentType, ext = allowed, e
			break
		}
	}
	if contentType == "" {
		return nil, apperrors.Validation("only image files are allowed",
			apperrors.FieldError{Field: field, Message: "unsupported file type " + mtype.String()})
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, apperrors.Internal("rewind upload", err)
	}

	name := fmt.Sprintf("%s-%d-%d%s", field, s.now().UnixMilli(), rand.Int63n(1e9), ext)
	obj, err := s.store.Save(ctx, name, io.LimitReader(src, MaxUploadSize), file.Size, contentType)
	if err != nil {
		return nil, apperrors.Internal("store upload", err)
	}
	return obj, nil
}

// Delete removes a previously stored file.
func (s *uploadService) Delete(ctx context.Context, filename string) error {
	if filename == "" {
		return nil
	}
	return s.store.Delete(ctx, filename)
}
