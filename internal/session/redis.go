package session

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"cardialink-engine/internal/model"
)

const keyPrefix = "cardialink:session:"

// RedisStore keeps sessions as JSON strings with a Redis-side expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func key(id string) string { return keyPrefix + id }

func (r *RedisStore) Load(ctx context.Context, id string) (*model.Session, error) {
	data, err := r.client.Get(ctx, key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrapf(err, "redis get session %s", id)
	}

	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "decode session %s", id)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrapf(err, "encode session %s", s.ID)
	}
	if err := r.client.Set(ctx, key(s.ID), data, r.ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set session %s", s.ID)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		return errors.Wrapf(err, "redis del session %s", id)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return errors.Wrap(r.client.Ping(ctx).Err(), "redis ping")
}
