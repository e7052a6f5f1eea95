package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/internal/domain/repository"
)

type userDoc struct {
	ID          string     `bson:"_id"`
	Name        string     `bson:"name"`
	Email       string     `bson:"email"`
	Password    string     `bson:"password"`
	Phone       string     `bson:"phone,omitempty"`
	DateOfBirth *time.Time `bson:"dateOfBirth"`
	Gender      string     `bson:"gender,omitempty"`
	Ethnicity   string     `bson:"ethnicity,omitempty"`
	Address     string     `bson:"address,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

func toUserDoc(u *entity.User) userDoc {
	return userDoc{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Password:    u.Password,
		Phone:       u.Phone,
		DateOfBirth: u.DateOfBirth,
		Gender:      u.Gender,
		Ethnicity:   u.Ethnicity,
		Address:     u.Address,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (d *userDoc) toEntity() *entity.User {
	u := &entity.User{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Password:  d.Password,
		Phone:     d.Phone,
		Gender:    d.Gender,
		Ethnicity: d.Ethnicity,
		Address:   d.Address,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if d.DateOfBirth != nil {
		dob := d.DateOfBirth.UTC()
		u.DateOfBirth = &dob
	}
	return u
}

type UserRepository struct {
	col *mongo.Collection
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	return insertOne(ctx, r.col, toUserDoc(u))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	d, err := findOne[userDoc](ctx, r.col, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, err
	}
	return d.toEntity(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	d, err := findOne[userDoc](ctx, r.col, bson.D{{Key: "email", Value: email}})
	if err != nil {
		return nil, err
	}
	return d.toEntity(), nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	return replaceByID(ctx, r.col, u.ID, toUserDoc(u))
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id)
}

var _ repository.UserRepository = (*UserRepository)(nil)
