// Package memory is a process-local store used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/internal/domain/repository"
)

// Store keeps users and entries in maps guarded by one RWMutex. Records are
// copied on the way in and out so callers never share memory with the store.
type Store struct {
	mu      sync.RWMutex
	users   map[string]entity.User
	entries map[string]entity.DiaryEntry
}

func NewStore() *Store {
	return &Store{
		users:   map[string]entity.User{},
		entries: map[string]entity.DiaryEntry{},
	}
}

// Users returns the store as a UserRepository.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Entries returns the store as a DiaryEntryRepository.
func (s *Store) Entries() *DiaryEntryRepository { return &DiaryEntryRepository{s: s} }

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	r.s.users[u.ID] = copyUser(u)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyUser(&u)
	return &out, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			out := copyUser(&u)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.s.users {
		if id != u.ID && strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	r.s.users[u.ID] = copyUser(u)
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

type DiaryEntryRepository struct{ s *Store }

func (r *DiaryEntryRepository) Create(_ context.Context, e *entity.DiaryEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.entries[e.ID]; ok {
		return repository.ErrDuplicate
	}
	r.s.entries[e.ID] = *e
	return nil
}

func (r *DiaryEntryRepository) GetByID(_ context.Context, id string) (*entity.DiaryEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *DiaryEntryRepository) Update(_ context.Context, e *entity.DiaryEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.entries[e.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.entries[e.ID] = *e
	return nil
}

func (r *DiaryEntryRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.entries[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.entries, id)
	return nil
}

func (r *DiaryEntryRepository) List(_ context.Context, q repository.EntryQuery) ([]*entity.DiaryEntry, error) {
	r.s.mu.RLock()
	out := make([]*entity.DiaryEntry, 0)
	window := q.Window()
	for _, e := range r.s.entries {
		if e.OwnerID != q.OwnerID || !window.Contains(e.CreatedAt) {
			continue
		}
		e := e
		out = append(out, &e)
	}
	r.s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if q.Order == repository.OldestFirst {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *DiaryEntryRepository) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, e := range r.s.entries {
		if e.OwnerID == ownerID {
			delete(r.s.entries, id)
			n++
		}
	}
	return n, nil
}

func copyUser(u *entity.User) entity.User {
	out := *u
	if u.DateOfBirth != nil {
		dob := *u.DateOfBirth
		out.DateOfBirth = &dob
	}
	return out
}

var (
	_ repository.UserRepository       = (*UserRepository)(nil)
	_ repository.DiaryEntryRepository = (*DiaryEntryRepository)(nil)
)
