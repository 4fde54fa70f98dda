package cartlock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/storefront-backend/internal/platform/envutil"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

const lockKeyPrefix = "checkout:cart:"

// releaseScript deletes the lock only if this holder still owns it, so a
// lock that expired and was re-acquired by someone else is never stolen.
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisGuard holds cart locks in Redis so the guard works across
// instances. Locks carry a TTL as a crash backstop.
type RedisGuard struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisGuard(log *logger.Logger, ttl time.Duration) (*RedisGuard, error) {
	addr := strings.TrimSpace(envutil.String("REDIS_ADDR", ""))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisGuard{
		log: log.With("component", "RedisCartGuard"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func (g *RedisGuard) TryLock(ctx context.Context, cartID uuid.UUID) (func(), error) {
	key := lockKeyPrefix + cartID.String()
	holder := uuid.NewString()

	ok, err := g.rdb.SetNX(ctx, key, holder, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire cart lock: %w", err)
	}
	if !ok {
		return nil, ErrHeld
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, g.rdb, []string{key}, holder).Err(); err != nil && err != goredis.Nil {
				g.log.Warn("failed to release cart lock", "cart_id", cartID, "error", err)
			}
		})
	}
	return release, nil
}

func (g *RedisGuard) Close() error { return g.rdb.Close() }
