package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local stores files in a directory served by the HTTP layer under baseURL.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal creates dir if needed and returns a disk-backed store.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, baseURL: baseURL}, nil
}

// Dir returns the directory files are written to.
func (l *Local) Dir() string {
	return l.dir
}

// Save writes body to dir/name. A partially written file is removed on failure.
func (l *Local) Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) (*Object, error) {
	name = cleanName(name)
	if name == "" {
		return nil, errors.New("empty file name")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := filepath.Join(l.dir, name)
	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	written, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		return nil, fmt.Errorf("write %s: %w", name, err)
	}

	return &Object{
		Filename:    name,
		URL:         joinURL(l.baseURL, name),
		Size:        written,
		ContentType: contentType,
	}, nil
}

// Delete removes name. Missing files are not an error.
func (l *Local) Delete(ctx context.Context, name string) error {
	name = cleanName(name)
	if name == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(l.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}
