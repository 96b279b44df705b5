package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/record"
)

// Redis stores each record as a hash under <prefix>:application:<reference>
// and tracks the keys in the <prefix>:applications set.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to addr and checks the connection.
func OpenRedis(ctx context.Context, addr string, db int, prefix string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedis(client, prefix), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "horizon"
	}
	return &Redis{client: client, prefix: prefix}
}

// HashKey returns the hash key for a council reference.
func (r *Redis) HashKey(reference string) string {
	return r.prefix + ":application:" + reference
}

// IndexKey returns the key of the set of stored hash keys.
func (r *Redis) IndexKey() string {
	return r.prefix + ":applications"
}

// Upsert writes the record fields, replacing any previous hash.
func (r *Redis) Upsert(ctx context.Context, rec record.Record) error {
	ref := rec.Key()
	if ref == "" {
		ref = "blank:" + uuid.NewString()
	}
	key := r.HashKey(ref)

	fields := make(map[string]any)
	for k, v := range rec.Fields() {
		if v != nil {
			fields[k] = v
		}
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		pipe.SAdd(ctx, r.IndexKey(), key)
		return nil
	})
	observe(DriverRedis, err)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", rec.Key(), err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
