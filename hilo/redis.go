package hilo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix prefixes the hash key of every entity in Redis.
const DefaultKeyPrefix = "tablegen:hilo:"

// reserveScript reads the counter hash and increments the counter in one
// atomic step. Rows with a non-positive skip are returned untouched.
var reserveScript = redis.NewScript(`
local row = redis.call("HMGET", KEYS[1], "counter", "skip")
if not row[1] or not row[2] then
	return false
end
local skip = tonumber(row[2])
if skip and skip > 0 then
	redis.call("HINCRBY", KEYS[1], "counter", 1)
end
return row
`)

var seedScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], "counter", ARGV[1], "skip", ARGV[2])
return 1
`)

// RedisStore keeps the counter rows as Redis hashes.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisStore returns a RedisStore using rdb. An empty prefix uses
// DefaultKeyPrefix.
func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// Key returns the hash key of entity.
func (s *RedisStore) Key(entity string) string {
	return s.prefix + entity
}

// Reserve implements Store.
func (s *RedisStore) Reserve(ctx context.Context, entity string) (int64, int64, error) {
	row, err := reserveScript.Run(ctx, s.rdb, []string{s.Key(entity)}).StringSlice()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, 0, fmt.Errorf("%w: %q", ErrNoCounter, entity)
	case err != nil:
		return 0, 0, err
	case len(row) != 2:
		return 0, 0, fmt.Errorf("hilo: unexpected counter reply %q", row)
	}
	counter, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("hilo: parse counter: %w", err)
	}
	skip, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("hilo: parse skip: %w", err)
	}
	if err := ValidateSkip(entity, skip); err != nil {
		return 0, 0, err
	}
	return counter, skip, nil
}

// Seed implements Seeder.
func (s *RedisStore) Seed(ctx context.Context, entity string, counter, skip int64) (bool, error) {
	if err := ValidateSkip(entity, skip); err != nil {
		return false, err
	}
	n, err := seedScript.Run(ctx, s.rdb, []string{s.Key(entity)}, counter, skip).Int()
	if err != nil {
		return false, fmt.Errorf("hilo: seed %q: %w", entity, err)
	}
	return n == 1, nil
}

var (
	_ Store  = (*RedisStore)(nil)
	_ Seeder = (*RedisStore)(nil)
)
