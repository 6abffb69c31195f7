package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// startRedis runs a throwaway Redis. Container tests only run when
// DISCIPULADO_INTEGRATION=1 because they need a Docker daemon.
func startRedis(t *testing.T) string {
	t.Helper()
	if os.Getenv("DISCIPULADO_INTEGRATION") != "1" {
		t.Skip("set DISCIPULADO_INTEGRATION=1 to run container tests")
	}
	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	url, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)
	return url
}

func TestRedisStore(t *testing.T) {
	url := startRedis(t)
	ctx := context.Background()

	store, err := NewRedisStore(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	require.ErrorIs(t, err, ErrMiss)
}

func TestRedisStore_BacksEventSource(t *testing.T) {
	url := startRedis(t)
	ctx := context.Background()

	store, err := NewRedisStore(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	next := &countingSource{event: &domain.Confraternizacao{ID: "e1", Title: "Páscoa"}}
	src := NewEventSource(next, store, time.Minute, nil)

	for range 3 {
		got, err := src.Active(ctx, "c1", day1)
		require.NoError(t, err)
		assert.Equal(t, "Páscoa", got.Title)
	}
	assert.Equal(t, 1, next.calls)
}

func TestNewRedisStore_BadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not a url", nil)
	require.Error(t, err)
}
