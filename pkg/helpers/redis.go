package helpers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// SessionKey is the hash holding one user's login session.
func SessionKey(userID string) string {
	return "user:session:" + userID
}

// SaveSession writes the session hash and (re)sets its TTL in one pipeline.
func SaveSession(ctx context.Context, rdb *redis.Client, userID string, fields map[string]any, ttl time.Duration) error {
	key := SessionKey(userID)
	pipe := rdb.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// GetSession returns the session fields, empty when no session exists.
func GetSession(ctx context.Context, rdb *redis.Client, userID string) (map[string]string, error) {
	return rdb.HGetAll(ctx, SessionKey(userID)).Result()
}

func DeleteSession(ctx context.Context, rdb *redis.Client, userID string) error {
	return rdb.Del(ctx, SessionKey(userID)).Err()
}
