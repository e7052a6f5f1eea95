// Package mongostore implements the user and diary entry repositories on MongoDB
// using mongo-driver v2. Collection names and indexes live in this file.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	ColUsers   = "users"
	ColEntries = "diaryentries"
)

// Store holds the client and database handle shared by both repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects, pings and ensures indexes. Index failures are logged
// but do not prevent startup.
func NewStore(ctx context.Context, uri, dbName string, logger *logrus.Logger) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName)}
	if err := s.ensureIndexes(pingCtx); err != nil && logger != nil {
		logger.WithError(err).Warn("mongostore: ensure indexes failed")
	}
	return s, nil
}

func (s *Store) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Users() *UserRepository { return &UserRepository{col: s.col(ColUsers)} }

func (s *Store) Entries() *DiaryEntryRepository {
	return &DiaryEntryRepository{col: s.col(ColEntries)}
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	indexes := []idx{
		{ColUsers, bson.D{{Key: "email", Value: 1}}, true},
		{ColEntries, bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}, false},
	}

	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}
	return nil
}
