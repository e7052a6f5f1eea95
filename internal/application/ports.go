package application

import (
	"context"
	"io"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
)

// Generator produces free text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EntryIndex is the full-text index kept beside the entry store.
type EntryIndex interface {
	Put(ctx context.Context, e *entity.DiaryEntry) error
	Remove(ctx context.Context, id string) error
	RemoveByOwner(ctx context.Context, ownerID string) error
	Search(ctx context.Context, ownerID, q string, size int) ([]string, error)
}

// Publisher puts JSON jobs on the notification queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// RangeRequest is the raw range selection sent by clients.
type RangeRequest struct {
	Range       string
	CustomStart string
	CustomEnd   string
}

// RequestMeta describes the caller for notification emails.
type RequestMeta struct {
	IP        string
	UserAgent string
}
