package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_GetSetDelete(t *testing.T) {
	s := NewLocalStore(time.Hour, nil)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, s.Set(ctx, "k", "v", 0))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrMiss)
}

func TestLocalStore_Expiry(t *testing.T) {
	s := NewLocalStore(time.Hour, nil)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	require.NoError(t, s.Set(ctx, "short", "1", time.Minute))
	require.NoError(t, s.Set(ctx, "forever", "2", 0))

	clock = clock.Add(time.Minute)
	_, err := s.Get(ctx, "short")
	require.ErrorIs(t, err, ErrMiss)
	_, err = s.Get(ctx, "forever")
	require.NoError(t, err)

	assert.Equal(t, 1, s.sweep())
	assert.Len(t, s.data, 1)
}

func TestLocalStore_CloseTwice(t *testing.T) {
	s := NewLocalStore(0, nil)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
