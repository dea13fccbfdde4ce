package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryRevocationStore_RevokeAndExpire(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return base }
	t.Cleanup(func() { now = time.Now })

	s := NewMemoryRevocationStore()
	require.NoError(t, s.Revoke(ctx, "jti-1", base.Add(time.Hour)))

	revoked, err := s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = s.IsRevoked(ctx, "other")
	require.NoError(t, err)
	require.False(t, revoked)
	require.Equal(t, 1, s.Len())

	now = func() time.Time { return base.Add(2 * time.Hour) }
	revoked, err = s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	s.PurgeExpired()
	require.Equal(t, 0, s.Len())
	require.Empty(t, s.items)
}

func TestMemoryRevocationStore_IgnoresPastExpiry(t *testing.T) {
	s := NewMemoryRevocationStore()
	require.NoError(t, s.Revoke(context.Background(), "gone", time.Now().Add(-time.Second)))
	require.Empty(t, s.items)
}

func TestSetRevocationStore(t *testing.T) {
	prev := Revocations()
	t.Cleanup(func() { SetRevocationStore(prev) })

	s := NewMemoryRevocationStore()
	SetRevocationStore(s)
	require.Same(t, s, Revocations())
}
