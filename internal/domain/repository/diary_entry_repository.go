package repository

import (
	"context"
	"time"

	"github.com/oksasatya/narrative-weaver/internal/domain/daterange"
	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
)

// SortOrder controls createdAt ordering of List results.
type SortOrder int

const (
	NewestFirst SortOrder = iota
	OldestFirst
)

// EntryQuery selects one owner's entries. A zero From or To leaves that side
// of the createdAt window open; both bounds are inclusive.
type EntryQuery struct {
	OwnerID string
	From    time.Time
	To      time.Time
	Order   SortOrder
}

// Window returns the createdAt bounds of q.
func (q EntryQuery) Window() daterange.Range {
	return daterange.Range{Start: q.From, End: q.To}
}

// DiaryEntryRepository defines the interface for diary entry persistence.
type DiaryEntryRepository interface {
	Create(ctx context.Context, e *entity.DiaryEntry) error
	GetByID(ctx context.Context, id string) (*entity.DiaryEntry, error)
	Update(ctx context.Context, e *entity.DiaryEntry) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q EntryQuery) ([]*entity.DiaryEntry, error)
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
