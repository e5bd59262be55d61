package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/lifetrack/domain"
	"github.com/fastygo/lifetrack/internal/infrastructure/buffer"
	"github.com/fastygo/lifetrack/usecase/goals"
)

type switchHealth struct{ online bool }

func (s *switchHealth) IsOnline() bool { return s.online }

func TestReplayWaitsForRemote(t *testing.T) {
	ctx := context.Background()
	queue := openBuffer(t)
	remote := newMemoryRepo()
	health := &switchHealth{}
	rp := NewReplayProcessor(queue, health, remote, nil, ReplayConfig{})

	require.NoError(t, queue.Enqueue(buffer.Item{Key: "user.json", Data: json.RawMessage(`{"Id":1}`)}))
	require.NoError(t, queue.Enqueue(buffer.Item{Key: "old.json", Operation: buffer.OperationDelete}))
	require.NoError(t, remote.Put(ctx, "old.json", []byte(`{}`)))

	require.NoError(t, rp.Drain(ctx))
	assert.Equal(t, 2, rp.Size())
	assert.False(t, remote.has("user.json"))

	health.online = true
	require.NoError(t, rp.Drain(ctx))
	assert.Zero(t, rp.Size())
	assert.True(t, remote.has("user.json"))
	assert.False(t, remote.has("old.json"))
}

func TestReplayDropsAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	queue := openBuffer(t)
	remote := newMemoryRepo()
	remote.fail(errors.New("still down"))
	rp := NewReplayProcessor(queue, nil, remote, zap.New(core), ReplayConfig{MaxRetries: 2})

	require.NoError(t, queue.Enqueue(buffer.Item{Key: "user.json", Data: json.RawMessage(`{}`)}))

	require.NoError(t, rp.Drain(ctx))
	assert.Equal(t, 1, rp.Size())

	require.NoError(t, rp.Drain(ctx))
	assert.Zero(t, rp.Size())
	assert.Equal(t, 1, logs.FilterMessage("dropping pending write (max retries reached)").Len())
}

func TestBlobStoreRejectedWritesReachRemoteAfterReplay(t *testing.T) {
	ctx := context.Background()
	remote, local := newMemoryRepo(), newMemoryRepo()
	queue := openBuffer(t)
	store := NewBlobStore(BlobTiers{Remote: remote, Local: local, Pending: queue}, nil)

	remote.fail(errors.New("503"))
	require.NoError(t, store.Put(ctx, "user.json", profile{Name: "later"}))
	assert.False(t, remote.has("user.json"))
	assert.Equal(t, ModeRemote, store.Mode(), "a rejected write does not disable the remote")

	remote.fail(nil)
	rp := NewReplayProcessor(queue, &switchHealth{online: true}, remote, nil, ReplayConfig{})
	require.NoError(t, rp.Drain(ctx))
	assert.JSONEq(t, `{"Name":"later","Points":0}`, string(remote.get("user.json")))
}

func TestRemoteLoadFailureNeverOverwritesRemoteProfile(t *testing.T) {
	ctx := context.Background()
	remote, local := newMemoryRepo(), newMemoryRepo()
	queue := openBuffer(t)
	require.NoError(t, remote.Put(ctx, "user_alice.json", []byte(`{"Id":1,"Username":"Alice","TotalPoints":900,"Level":10}`)))
	require.NoError(t, remote.Put(ctx, "categories_alice.json", []byte(`[{"Id":1,"Name":"Health","Goals":[{"Id":1,"Description":"Walk","CategoryId":1,"Points":10}]}]`)))
	store := NewBlobStore(BlobTiers{Remote: remote, Local: local, Pending: queue}, nil)

	remote.fail(errors.New("connection reset"))
	offline := goals.NewEngine(store.Fork())
	offline.SwitchNamespace(ctx, "alice")
	assert.Equal(t, domain.DefaultUsername, offline.CurrentUser().Username)
	offline.CompleteGoal(ctx, 1, 1)
	assert.True(t, local.has("user_alice.json"))

	remote.fail(nil)
	rp := NewReplayProcessor(queue, &switchHealth{online: true}, remote, nil, ReplayConfig{})
	require.NoError(t, rp.Drain(ctx))
	assert.Zero(t, rp.Size())

	var stored domain.User
	require.NoError(t, json.Unmarshal(remote.get("user_alice.json"), &stored))
	assert.Equal(t, "Alice", stored.Username)
	assert.Equal(t, 900, stored.TotalPoints)

	online := goals.NewEngine(store.Fork())
	online.SwitchNamespace(ctx, "alice")
	assert.Equal(t, "Alice", online.CurrentUser().Username)
	assert.Equal(t, 900, online.CurrentUser().TotalPoints)
	require.Len(t, online.Categories(), 1)
	assert.Equal(t, "Walk", online.Categories()[0].Goals[0].Description)
}
