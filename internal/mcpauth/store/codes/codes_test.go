package codes

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
)

func pending(userID string) domain.PendingAuthorization {
	return domain.PendingAuthorization{
		UserID:              userID,
		ClientID:            "mcp_abc",
		RedirectURI:         "https://app.example.com/callback",
		Scope:               "read",
		CodeChallenge:       "challenge",
		CodeChallengeMethod: "S256",
		CreatedAt:           time.Now().UTC().Truncate(time.Second),
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("take returns the stored record exactly once", func(t *testing.T) {
		s := NewMemoryStore(nil)
		require.NoError(t, s.Put(ctx, "code-1", pending("user-1"), time.Minute))

		rec, found, err := s.TakeOnce(ctx, "code-1")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "user-1", rec.UserID)

		_, found, err = s.TakeOnce(ctx, "code-1")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("unknown code is a miss", func(t *testing.T) {
		s := NewMemoryStore(nil)
		_, found, err := s.TakeOnce(ctx, "never-stored")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("expired code is treated like an unknown one", func(t *testing.T) {
		now := time.Now()
		s := NewMemoryStore(func() time.Time { return now })
		require.NoError(t, s.Put(ctx, "code-2", pending("user-2"), 10*time.Minute))

		now = now.Add(11 * time.Minute)
		_, found, err := s.TakeOnce(ctx, "code-2")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("discard removes without returning", func(t *testing.T) {
		s := NewMemoryStore(nil)
		require.NoError(t, s.Put(ctx, "code-3", pending("user-3"), time.Minute))
		require.NoError(t, s.Discard(ctx, "code-3"))

		_, found, err := s.TakeOnce(ctx, "code-3")
		require.NoError(t, err)
		require.False(t, found)
	})
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("take is an atomic get-and-delete", func(t *testing.T) {
		s, _ := newRedisStore(t)
		require.NoError(t, s.Put(ctx, "code-1", pending("user-1"), time.Minute))

		rec, found, err := s.TakeOnce(ctx, "code-1")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "mcp_abc", rec.ClientID)
		require.Equal(t, "S256", rec.CodeChallengeMethod)

		_, found, err = s.TakeOnce(ctx, "code-1")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("records expire with the server TTL", func(t *testing.T) {
		s, mr := newRedisStore(t)
		require.NoError(t, s.Put(ctx, "code-2", pending("user-2"), 10*time.Minute))

		mr.FastForward(11 * time.Minute)

		_, found, err := s.TakeOnce(ctx, "code-2")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("discard deletes the key", func(t *testing.T) {
		s, _ := newRedisStore(t)
		require.NoError(t, s.Put(ctx, "code-3", pending("user-3"), time.Minute))
		require.NoError(t, s.Discard(ctx, "code-3"))

		_, found, err := s.TakeOnce(ctx, "code-3")
		require.NoError(t, err)
		require.False(t, found)
	})
}
