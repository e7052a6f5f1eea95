package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/internal/domain/repository"
)

type entryDoc struct {
	ID        string    `bson:"_id"`
	User      string    `bson:"user"`
	Text      string    `bson:"text"`
	Image     string    `bson:"image,omitempty"`
	Feeling   string    `bson:"feeling,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func toEntryDoc(e *entity.DiaryEntry) entryDoc {
	return entryDoc{
		ID:        e.ID,
		User:      e.OwnerID,
		Text:      e.Text,
		Image:     e.Image,
		Feeling:   e.Feeling,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (d *entryDoc) toEntity() *entity.DiaryEntry {
	return &entity.DiaryEntry{
		ID:        d.ID,
		OwnerID:   d.User,
		Text:      d.Text,
		Image:     d.Image,
		Feeling:   d.Feeling,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type DiaryEntryRepository struct {
	col *mongo.Collection
}

func (r *DiaryEntryRepository) Create(ctx context.Context, e *entity.DiaryEntry) error {
	return insertOne(ctx, r.col, toEntryDoc(e))
}

func (r *DiaryEntryRepository) GetByID(ctx context.Context, id string) (*entity.DiaryEntry, error) {
	d, err := findOne[entryDoc](ctx, r.col, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, err
	}
	return d.toEntity(), nil
}

func (r *DiaryEntryRepository) Update(ctx context.Context, e *entity.DiaryEntry) error {
	return replaceByID(ctx, r.col, e.ID, toEntryDoc(e))
}

func (r *DiaryEntryRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id)
}

func (r *DiaryEntryRepository) List(ctx context.Context, q repository.EntryQuery) ([]*entity.DiaryEntry, error) {
	filter := bson.D{{Key: "user", Value: q.OwnerID}}
	if w := q.Window(); w.IsBounded() {
		created := bson.D{}
		if !w.Start.IsZero() {
			created = append(created, bson.E{Key: "$gte", Value: w.Start})
		}
		if !w.End.IsZero() {
			created = append(created, bson.E{Key: "$lte", Value: w.End})
		}
		filter = append(filter, bson.E{Key: "createdAt", Value: created})
	}

	dir := -1
	if q.Order == repository.OldestFirst {
		dir = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: dir}})

	docs, err := findMany[entryDoc](ctx, r.col, filter, opts)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.DiaryEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

func (r *DiaryEntryRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.D{{Key: "user", Value: ownerID}})
	if err != nil {
		return 0, wrapError(err)
	}
	return res.DeletedCount, nil
}

var _ repository.DiaryEntryRepository = (*DiaryEntryRepository)(nil)
