package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint (user email) is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
}
