package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/lifetrack/domain"
	"github.com/fastygo/lifetrack/usecase/goals"
)

func newTestRegistry(t *testing.T) (*SessionRegistry, *memoryRepo) {
	t.Helper()
	local := newMemoryRepo()
	store := NewBlobStore(BlobTiers{Local: local}, nil)
	registry := NewSessionRegistry(func(string) *goals.Engine {
		return goals.NewEngine(store.Fork())
	}, nil)
	return registry, local
}

func TestSessionRegistryIsolatesIdentities(t *testing.T) {
	ctx := context.Background()
	registry, local := newTestRegistry(t)

	require.NoError(t, registry.With(ctx, "alice", func(e *goals.Engine) error {
		assert.Equal(t, "alice", e.Namespace())
		e.CompleteGoal(ctx, 1, 1)
		return nil
	}))
	require.NoError(t, registry.With(ctx, "bob", func(e *goals.Engine) error {
		assert.Zero(t, e.CurrentUser().TotalPoints)
		return nil
	}))

	assert.Equal(t, 2, registry.Len())
	assert.True(t, local.has("user_alice.json"))
	assert.True(t, local.has("categories_bob.json"))

	registry.Evict("alice")
	require.NoError(t, registry.With(ctx, "alice", func(e *goals.Engine) error {
		assert.Equal(t, 10, e.CurrentUser().TotalPoints)
		return nil
	}))
}

func TestSessionRegistrySerializesCalls(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry(t)

	var wg sync.WaitGroup
	for goalID := 1; goalID <= 3; goalID++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = registry.With(ctx, "carol", func(e *goals.Engine) error {
				e.CompleteGoal(ctx, 1, id)
				return nil
			})
		}(goalID)
	}
	wg.Wait()

	require.NoError(t, registry.With(ctx, "carol", func(e *goals.Engine) error {
		assert.Equal(t, 35, e.CurrentUser().TotalPoints)
		return nil
	}))
}

func TestSessionRegistrySweepReloadsIdleSessions(t *testing.T) {
	ctx := context.Background()
	registry, local := newTestRegistry(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return now }

	require.NoError(t, registry.With(ctx, "dana", func(e *goals.Engine) error {
		e.CompleteGoal(ctx, 1, 1)
		return nil
	}))

	now = now.Add(10 * time.Minute)
	assert.Zero(t, registry.Sweep(30*time.Minute), "recently used session stays")
	assert.Equal(t, 1, registry.Len())

	user := domain.NewDefaultUser(now)
	user.Username = "Dana"
	user.TotalPoints = 450
	data, err := json.Marshal(user)
	require.NoError(t, err)
	require.NoError(t, local.Put(ctx, "user_dana.json", data))

	now = now.Add(time.Hour)
	assert.Equal(t, 1, registry.Sweep(30*time.Minute))
	assert.Zero(t, registry.Len())

	require.NoError(t, registry.With(ctx, "dana", func(e *goals.Engine) error {
		assert.Equal(t, "Dana", e.CurrentUser().Username)
		assert.Equal(t, 450, e.CurrentUser().TotalPoints)
		return nil
	}))
}

func TestSessionRegistrySweepKeepsBusySessions(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry(t)

	require.NoError(t, registry.With(ctx, "erin", func(e *goals.Engine) error {
		assert.Zero(t, registry.Sweep(0))
		return nil
	}))
	assert.Equal(t, 1, registry.Len())
	assert.Equal(t, 1, registry.Sweep(0))
}

func TestSessionRegistryEvictionSchedule(t *testing.T) {
	registry, _ := newTestRegistry(t)
	registry.StartEviction(SessionConfig{})
	assert.Nil(t, registry.cron, "zero TTL disables eviction")

	registry.StartEviction(SessionConfig{IdleTTL: time.Minute, SweepInterval: time.Second})
	require.NotNil(t, registry.cron)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, registry.Stop(ctx))
	assert.Nil(t, registry.cron)
	require.NoError(t, registry.Stop(ctx))
}
