package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// maxTxnRetries bounds optimistic retries when a watched key changes.
const maxTxnRetries = 10

// ErrConflict is returned when a transaction keeps losing to concurrent writers.
var ErrConflict = errors.New("kv: too many concurrent updates")

// Redis is a KV backed by a Redis server. Transactions use WATCH/MULTI.
type Redis struct {
	client *redis.Client
}

// RedisOptions configures NewRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis connects to Redis and checks the connection.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	return mget(ctx, r.client, keys)
}

func (r *Redis) Txn(ctx context.Context, keys []string, fn func(map[string][]byte) (map[string][]byte, error)) error {
	txf := func(tx *redis.Tx) error {
		cur, err := mget(ctx, tx, keys)
		if err != nil {
			return err
		}
		writes, err := fn(cur)
		if err != nil {
			return err
		}
		if len(writes) == 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for k, v := range writes {
				pipe.Set(ctx, k, v, 0)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxTxnRetries; i++ {
		err := r.client.Watch(ctx, txf, keys...)
		if err == redis.TxFailedErr {
			continue
		}
		return err
	}
	return ErrConflict
}

func (r *Redis) Close() error {
	return r.client.Close()
}

type mgetter interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

func mget(ctx context.Context, c mgetter, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := c.MGet(ctx, keys...).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("mget: %w", err)
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[keys[i]] = []byte(s)
		}
	}
	return out, nil
}
