package cache

import (
	"context"
	"errors"
	"fmt"
	"parcel-dispatch-service/internal/platform/obs"
	"parcel-dispatch-service/internal/ports"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ ports.DistanceCache = (*RedisDistanceCache)(nil)

// RedisDistanceCache stores one origin per hash: field = destination, value = miles.
type RedisDistanceCache struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

// NewRedisDistanceCache uses the "distance:" key prefix. A zero ttl keeps entries forever.
func NewRedisDistanceCache(client *redis.Client, ttl time.Duration) *RedisDistanceCache {
	return &RedisDistanceCache{Client: client, Prefix: "distance:", TTL: ttl}
}

func (r *RedisDistanceCache) key(origin string) string { return r.Prefix + origin }

// Fetch cached distances for one origin and multiple destinations.
func (r *RedisDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]float64, err error) {
	defer obs.Time(ctx, "distance.redis.GetMany")(&err)

	if r.Client == nil {
		return nil, errors.New("distance cache: redis client is nil")
	}
	if origin == "" {
		return nil, errors.New("get distance cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]float64{}, nil
	}

	vals, err := r.Client.HMGet(ctx, r.key(origin), uniq...).Result()
	if err != nil {
		return nil, fmt.Errorf("get distance cache: hmget %q: %w", origin, err)
	}

	out := make(map[string]float64, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		miles, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("get distance cache: parse %q -> %q: %w", origin, uniq[i], err)
		}
		out[uniq[i]] = miles
	}

	return out, nil
}

// Store many cached distances for a single origin.
func (r *RedisDistanceCache) PutMany(ctx context.Context, origin string, results map[string]float64) error {
	if r.Client == nil {
		return errors.New("distance cache: redis client is nil")
	}
	if origin == "" {
		return errors.New("insert distance cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	fields := make([]any, 0, 2*len(results))
	for dest, miles := range results {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert distance cache: empty destination key")
		}
		fields = append(fields, dest, strconv.FormatFloat(miles, 'f', -1, 64))
	}

	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key(origin), fields...)
		if r.TTL > 0 {
			pipe.Expire(ctx, r.key(origin), r.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert distance cache origin=%q: %w", origin, err)
	}

	return nil
}
