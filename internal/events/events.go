// Package events publishes content lifecycle events. Publishing is best-effort:
// callers log failures and carry on.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	PostCreated   = "post.created"
	PostUpdated   = "post.updated"
	PostPublished = "post.published"
	PostDeleted   = "post.deleted"
)

// Event is a notification about a post.
type Event struct {
	Type       string    `json:"type"`
	PostID     string    `json:"postId"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher delivers events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
