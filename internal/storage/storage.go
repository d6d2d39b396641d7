// Package storage persists uploaded files. Backends are not content-addressed:
// callers choose unique names.
package storage

import (
	"context"
	"io"
	"path"
	"strings"
)

// Object describes a stored file.
type Object struct {
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"mimetype"`
}

// Storage saves and removes named files.
type Storage interface {
	Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) (*Object, error)
	Delete(ctx context.Context, name string) error
}

// joinURL appends name to base with exactly one slash between them.
func joinURL(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(name, "/")
}

// cleanName strips any directory components from a caller-supplied name.
func cleanName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
