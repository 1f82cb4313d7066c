package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ViewCache is a generic JSON-backed Redis cache for read model projections.
// Keys are built from a fixed prefix and an id; ttl 0 means no expiry.
type ViewCache[T any] struct {
	client goredis.Cmdable
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

func NewViewCache[T any](client goredis.Cmdable, prefix string, ttl time.Duration, logger *slog.Logger) *ViewCache[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *ViewCache[T]) key(id string) string {
	return c.prefix + id
}

// Get returns (nil, false) on a miss. Redis or decoding failures also count
// as a miss so the caller falls back to the store.
func (c *ViewCache[T]) Get(ctx context.Context, id string) (*T, bool) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.logger.WarnContext(ctx, "view cache read failed", "key", c.key(id), "error", err)
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.WarnContext(ctx, "view cache entry unreadable", "key", c.key(id), "error", err)
		return nil, false
	}
	return &v, true
}

// setIfNewer writes ARGV[1] unless the cached document already carries a
// version at or above ARGV[2]. ARGV[3] is the ttl in milliseconds, 0 for none.
var setIfNewer = goredis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
	local ok, doc = pcall(cjson.decode, current)
	if ok and type(doc) == 'table' then
		local cached = tonumber(doc['version'])
		if cached and cached >= tonumber(ARGV[2]) then
			return 0
		end
	end
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// SetIfNewer stores value under id unless the cached entry is already at
// version or later. T must encode its version as a top-level "version" field.
// It reports whether the entry was written.
func (c *ViewCache[T]) SetIfNewer(ctx context.Context, id string, value *T, version int64) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.ErrorContext(ctx, "view cache marshal failed", "key", c.key(id), "error", err)
		return false, err
	}
	written, err := setIfNewer.Run(ctx, c.client, []string{c.key(id)}, data, version, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.logger.WarnContext(ctx, "view cache write failed", "key", c.key(id), "error", err)
		return false, err
	}
	if written == 0 {
		c.logger.DebugContext(ctx, "view cache kept newer entry", "key", c.key(id), "version", version)
	}
	return written == 1, nil
}

func (c *ViewCache[T]) Delete(ctx context.Context, id string) {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		c.logger.WarnContext(ctx, "view cache delete failed", "key", c.key(id), "error", err)
	}
}
