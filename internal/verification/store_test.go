package verification

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// clockedStore lets the tests move time forward on either implementation.
type clockedStore struct {
	Store
	setNow func(time.Time)
}

func newStores(t *testing.T) map[string]clockedStore {
	t.Helper()

	mem := NewMemoryStore()
	mr := miniredis.RunT(t)
	rds := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	return map[string]clockedStore{
		"memory": {Store: mem, setNow: func(at time.Time) { mem.now = func() time.Time { return at } }},
		"redis":  {Store: rds, setNow: func(at time.Time) { rds.now = func() time.Time { return at } }},
	}
}

func TestIssueGeneratesSixDigitCode(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			code, err := store.Issue(context.Background(), "a@b.com", 7)
			require.NoError(t, err)
			assert.Regexp(t, codePattern, code)
		})
	}
}

func TestConsumeHappyPathIsSingleUse(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			code, err := store.Issue(ctx, "a@b.com", 42)
			require.NoError(t, err)

			userID, err := store.Consume(ctx, "a@b.com", code)
			require.NoError(t, err)
			assert.Equal(t, int64(42), userID)

			// The code burned on first use.
			_, err = store.Consume(ctx, "a@b.com", code)
			assert.ErrorIs(t, err, ErrCodeNotFound)
		})
	}
}

func TestConsumeUnknownEmail(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Consume(context.Background(), "nobody@b.com", "123456")
			assert.ErrorIs(t, err, ErrCodeNotFound)
		})
	}
}

func TestConsumeExpiredCodeRemovesEntry(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
			store.setNow(issuedAt)

			code, err := store.Issue(ctx, "a@b.com", 42)
			require.NoError(t, err)

			store.setNow(issuedAt.Add(Window + time.Second))
			_, err = store.Consume(ctx, "a@b.com", code)
			assert.ErrorIs(t, err, ErrCodeExpired)

			// Expiry detection deleted the entry.
			_, err = store.Consume(ctx, "a@b.com", code)
			assert.ErrorIs(t, err, ErrCodeNotFound)
		})
	}
}

func TestConsumeMismatchKeepsCodeAlive(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			code, err := store.Issue(ctx, "a@b.com", 42)
			require.NoError(t, err)

			wrong := "000000"
			if wrong == code {
				wrong = "000001"
			}
			_, err = store.Consume(ctx, "a@b.com", wrong)
			assert.ErrorIs(t, err, ErrCodeMismatch)

			// Mismatch does not burn the code; the right one still works.
			userID, err := store.Consume(ctx, "a@b.com", code)
			require.NoError(t, err)
			assert.Equal(t, int64(42), userID)
		})
	}
}

func TestIssueOverwritesPriorCode(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first, err := store.Issue(ctx, "a@b.com", 42)
			require.NoError(t, err)
			second, err := store.Issue(ctx, "a@b.com", 42)
			require.NoError(t, err)

			if first != second {
				_, err = store.Consume(ctx, "a@b.com", first)
				assert.ErrorIs(t, err, ErrCodeMismatch)
			}

			userID, err := store.Consume(ctx, "a@b.com", second)
			require.NoError(t, err)
			assert.Equal(t, int64(42), userID)
		})
	}
}

func TestEmailKeyIsCaseInsensitive(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			code, err := store.Issue(ctx, "A@B.com", 42)
			require.NoError(t, err)

			userID, err := store.Consume(ctx, "a@b.com", code)
			require.NoError(t, err)
			assert.Equal(t, int64(42), userID)
		})
	}
}
