package redisrepo

import (
	"context"

	"github.com/jrsteele09/go-course-client/tokens"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ tokens.Repo = (*RedisTokenRepo)(nil)

// RedisTokenRepo stores the encoded token record as a single string value.
// The key has no TTL; the record lives until logout or a failed refresh.
type RedisTokenRepo struct {
	client *redis.Client
	key    string
}

// New stores the record under prefix + tokens.StorageKey.
func New(client *redis.Client, prefix string) *RedisTokenRepo {
	return &RedisTokenRepo{
		client: client,
		key:    prefix + tokens.StorageKey,
	}
}

// NewFromURL parses a redis:// URL and verifies the connection.
func NewFromURL(ctx context.Context, url, prefix string) (*RedisTokenRepo, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "redisrepo.NewFromURL ParseURL")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redisrepo.NewFromURL Ping")
	}
	return New(client, prefix), nil
}

func (r *RedisTokenRepo) Get(ctx context.Context) (tokens.Pair, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return tokens.Pair{}, nil
	} else if err != nil {
		return tokens.Pair{}, errors.Wrap(err, "RedisTokenRepo.Get")
	}
	return tokens.DecodeRecord(data)
}

func (r *RedisTokenRepo) Set(ctx context.Context, pair tokens.Pair) error {
	data, err := tokens.EncodeRecord(pair)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return errors.Wrap(err, "RedisTokenRepo.Set")
	}
	return nil
}

func (r *RedisTokenRepo) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return errors.Wrap(err, "RedisTokenRepo.Clear")
	}
	return nil
}

// Close releases the underlying client.
func (r *RedisTokenRepo) Close() error {
	return r.client.Close()
}
