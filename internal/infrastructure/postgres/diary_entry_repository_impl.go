package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/internal/domain/repository"
)

const entryColumns = `id, owner_id, text, image, feeling, created_at, updated_at`

type DiaryEntryRepository struct {
	pool *pgxpool.Pool
}

func NewDiaryEntryRepository(pool *pgxpool.Pool) *DiaryEntryRepository {
	return &DiaryEntryRepository{pool: pool}
}

func (r *DiaryEntryRepository) Create(ctx context.Context, e *entity.DiaryEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO diary_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.OwnerID, e.Text, e.Image, e.Feeling, e.CreatedAt, e.UpdatedAt)
	return mapError(err)
}

func (r *DiaryEntryRepository) GetByID(ctx context.Context, id string) (*entity.DiaryEntry, error) {
	e := &entity.DiaryEntry{}
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM diary_entries WHERE id = $1`, id)
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Text, &e.Image, &e.Feeling, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (r *DiaryEntryRepository) Update(ctx context.Context, e *entity.DiaryEntry) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE diary_entries
		SET text = $1, image = $2, feeling = $3, updated_at = $4
		WHERE id = $5
	`, e.Text, e.Image, e.Feeling, e.UpdatedAt, e.ID)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DiaryEntryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM diary_entries WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DiaryEntryRepository) List(ctx context.Context, q repository.EntryQuery) ([]*entity.DiaryEntry, error) {
	sql, args := buildListQuery(q)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]*entity.DiaryEntry, 0)
	for rows.Next() {
		e := &entity.DiaryEntry{}
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Text, &e.Image, &e.Feeling, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *DiaryEntryRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM diary_entries WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected(), nil
}

// buildListQuery renders the owner/window/order query with positional args.
func buildListQuery(q repository.EntryQuery) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT ` + entryColumns + ` FROM diary_entries WHERE owner_id = $1`)
	args := []any{q.OwnerID}
	if !q.From.IsZero() {
		args = append(args, q.From)
		b.WriteString(` AND created_at >= $` + strconv.Itoa(len(args)))
	}
	if !q.To.IsZero() {
		args = append(args, q.To)
		b.WriteString(` AND created_at <= $` + strconv.Itoa(len(args)))
	}
	if q.Order == repository.OldestFirst {
		b.WriteString(` ORDER BY created_at ASC`)
	} else {
		b.WriteString(` ORDER BY created_at DESC`)
	}
	return b.String(), args
}

var _ repository.DiaryEntryRepository = (*DiaryEntryRepository)(nil)
