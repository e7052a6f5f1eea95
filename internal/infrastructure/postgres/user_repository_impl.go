package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/internal/domain/repository"
)

const uniqueViolation = "23505"

// mapError converts pgx errors into repository errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}

const userColumns = `id, name, email, password_hash, phone, date_of_birth, gender, ethnicity, address, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, u.ID, u.Name, u.Email, u.Password, u.Phone, u.DateOfBirth, u.Gender, u.Ethnicity, u.Address, u.CreatedAt, u.UpdatedAt)
	return mapError(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, query, arg)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Phone, &u.DateOfBirth,
		&u.Gender, &u.Ethnicity, &u.Address, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, phone = $4, date_of_birth = $5,
		    gender = $6, ethnicity = $7, address = $8, updated_at = $9
		WHERE id = $10
	`, u.Name, u.Email, u.Password, u.Phone, u.DateOfBirth, u.Gender, u.Ethnicity, u.Address, u.UpdatedAt, u.ID)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
