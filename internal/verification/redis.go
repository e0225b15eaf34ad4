package verification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeScript performs the whole consume decision server-side so that
// lookup, expiry check and deletion cannot interleave with a concurrent
// Issue or Consume for the same key.
var consumeScript = redis.NewScript(`
local fields = redis.call('HMGET', KEYS[1], 'code', 'user_id', 'expires_at')
if not fields[1] then
	return {'missing'}
end
if tonumber(ARGV[2]) > tonumber(fields[3]) then
	redis.call('DEL', KEYS[1])
	return {'expired'}
end
if fields[1] ~= ARGV[1] then
	return {'mismatch'}
end
redis.call('DEL', KEYS[1])
return {'ok', fields[2]}
`)

// RedisStore is a Store backed by Redis, shared across instances. The entry
// keeps its own expiry timestamp so an expired-but-present code is
// distinguishable from one that was never issued; the Redis TTL runs at twice
// the window purely as a janitor.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// Issue implements Store.
func (s *RedisStore) Issue(ctx context.Context, email string, userID int64) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	key := storageKey(email)
	expiresAt := s.now().Add(Window)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		"code", code,
		"user_id", strconv.FormatInt(userID, 10),
		"expires_at", strconv.FormatInt(expiresAt.Unix(), 10),
	)
	pipe.Expire(ctx, key, 2*Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("verification: issue: %w", err)
	}
	return code, nil
}

// Consume implements Store.
func (s *RedisStore) Consume(ctx context.Context, email, code string) (int64, error) {
	result, err := consumeScript.Run(ctx, s.client,
		[]string{storageKey(email)},
		code, strconv.FormatInt(s.now().Unix(), 10),
	).Slice()
	if err != nil {
		return 0, fmt.Errorf("verification: consume: %w", err)
	}
	if len(result) == 0 {
		return 0, ErrCodeNotFound
	}

	switch result[0] {
	case "missing":
		return 0, ErrCodeNotFound
	case "expired":
		return 0, ErrCodeExpired
	case "mismatch":
		return 0, ErrCodeMismatch
	case "ok":
		raw, _ := result[1].(string)
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("verification: corrupt user id %q: %w", raw, err)
		}
		return userID, nil
	default:
		return 0, fmt.Errorf("verification: unexpected consume result %v", result[0])
	}
}

var _ Store = (*RedisStore)(nil)
