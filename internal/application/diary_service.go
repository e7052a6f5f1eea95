package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/internal/domain/errs"
	repo "github.com/oksasatya/narrative-weaver/internal/domain/repository"
	"github.com/oksasatya/narrative-weaver/internal/infrastructure/metrics"
	"github.com/oksasatya/narrative-weaver/pkg/helpers"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

// DiaryService is the owner-scoped CRUD over diary entries. The search index
// is updated after each mutation on a best-effort basis.
type DiaryService struct {
	Entries repo.DiaryEntryRepository
	Index   EntryIndex
	Images  ImageStore
	Metrics *metrics.Metrics
	Logger  *logrus.Logger
	Now     func() time.Time
}

func NewDiaryService(entries repo.DiaryEntryRepository, index EntryIndex, images ImageStore, m *metrics.Metrics, logger *logrus.Logger) *DiaryService {
	return &DiaryService{Entries: entries, Index: index, Images: images, Metrics: m, Logger: logger, Now: time.Now}
}

type CreateEntryInput struct {
	Text    string
	Feeling string
	Image   string
}

// UpdateEntryInput fields left nil or empty keep their stored value.
type UpdateEntryInput struct {
	Text    *string
	Feeling *string
	Image   *string
}

func (s *DiaryService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DiaryService) List(ctx context.Context, ownerID string) ([]*entity.DiaryEntry, error) {
	list, err := s.Entries.List(ctx, repo.EntryQuery{OwnerID: ownerID, Order: repo.NewestFirst})
	if err != nil {
		return nil, errs.Store("list entries", err)
	}
	return list, nil
}

func (s *DiaryService) Create(ctx context.Context, ownerID string, in CreateEntryInput) (*entity.DiaryEntry, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, errs.Validation("Text field is required")
	}
	now := s.now()
	e := &entity.DiaryEntry{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Text:      in.Text,
		Feeling:   strings.TrimSpace(in.Feeling),
		Image:     strings.TrimSpace(in.Image),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Entries.Create(ctx, e); err != nil {
		return nil, errs.Store("create entry", err)
	}
	s.Metrics.ObserveEntryWrite("create")
	s.index(ctx, e)
	return e, nil
}

func (s *DiaryService) Update(ctx context.Context, ownerID, entryID string, in UpdateEntryInput) (*entity.DiaryEntry, error) {
	e, err := s.owned(ctx, ownerID, entryID)
	if err != nil {
		return nil, err
	}
	if in.Text != nil && strings.TrimSpace(*in.Text) != "" {
		e.Text = *in.Text
	}
	if in.Feeling != nil && *in.Feeling != "" {
		e.Feeling = strings.TrimSpace(*in.Feeling)
	}
	if in.Image != nil && *in.Image != "" {
		e.Image = strings.TrimSpace(*in.Image)
	}
	e.UpdatedAt = s.now()
	if err := s.Entries.Update(ctx, e); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errs.NotFound("Entry not found")
		}
		return nil, errs.Store("update entry", err)
	}
	s.Metrics.ObserveEntryWrite("update")
	s.index(ctx, e)
	return e, nil
}

func (s *DiaryService) Delete(ctx context.Context, ownerID, entryID string) error {
	e, err := s.owned(ctx, ownerID, entryID)
	if err != nil {
		return err
	}
	if err := s.Entries.Delete(ctx, e.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errs.NotFound("Entry not found")
		}
		return errs.Store("delete entry", err)
	}
	s.Metrics.ObserveEntryWrite("delete")
	if s.Index != nil {
		if err := s.Index.Remove(ctx, e.ID); err != nil {
			helpers.LogError(s.Logger, "unindex entry failed", err, logrus.Fields{"entry_id": e.ID})
		}
	}
	return nil
}

// Search matches q against the owner's entries, best match first when the
// index is available. Without an index, or when it fails, entries are
// filtered by case-insensitive substring, newest first.
func (s *DiaryService) Search(ctx context.Context, ownerID, q string, limit int) ([]*entity.DiaryEntry, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, errs.Validation("Search query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	if s.Index != nil {
		ids, err := s.Index.Search(ctx, ownerID, q, limit)
		if err == nil {
			return s.loadOwned(ctx, ownerID, ids)
		}
		helpers.LogError(s.Logger, "index search failed, scanning entries", err, logrus.Fields{"user_id": ownerID})
	}

	all, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(q)
	out := make([]*entity.DiaryEntry, 0, limit)
	for _, e := range all {
		if strings.Contains(strings.ToLower(e.Text), needle) || strings.Contains(strings.ToLower(e.Feeling), needle) {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// UploadImage stores an image under diary-images/<owner>/ and returns its URL.
func (s *DiaryService) UploadImage(ctx context.Context, ownerID, filename, contentType string, r io.Reader) (string, error) {
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return "", errs.Validation("Only image uploads are allowed")
	}
	if s.Images == nil {
		return "", errs.External("Image storage is not available", nil)
	}
	objectPath := fmt.Sprintf("diary-images/%s/%s%s", ownerID, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	url, err := s.Images.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return "", errs.External("Image upload failed", err)
	}
	return url, nil
}

// owned loads an entry and checks it belongs to ownerID. Existence is
// checked before ownership.
func (s *DiaryService) owned(ctx context.Context, ownerID, entryID string) (*entity.DiaryEntry, error) {
	e, err := s.Entries.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errs.NotFound("Entry not found")
		}
		return nil, errs.Store("get entry", err)
	}
	if !e.OwnedBy(ownerID) {
		return nil, errs.Forbidden("Not authorized")
	}
	return e, nil
}

func (s *DiaryService) loadOwned(ctx context.Context, ownerID string, ids []string) ([]*entity.DiaryEntry, error) {
	out := make([]*entity.DiaryEntry, 0, len(ids))
	for _, id := range ids {
		e, err := s.Entries.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			return nil, errs.Store("get entry", err)
		}
		if e.OwnedBy(ownerID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *DiaryService) index(ctx context.Context, e *entity.DiaryEntry) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Put(ctx, e); err != nil {
		helpers.LogError(s.Logger, "index entry failed", err, logrus.Fields{"entry_id": e.ID})
	}
}
