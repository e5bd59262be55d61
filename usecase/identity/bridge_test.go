package identity

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/lifetrack/domain"
	"github.com/fastygo/lifetrack/usecase/goals"
)

type memoryStore struct {
	docs map[string][]byte
}

func (m *memoryStore) Load(_ context.Context, key string, dst any) (bool, error) {
	data, ok := m.docs[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dst)
}

func (m *memoryStore) Put(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.docs[key] = data
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.docs, key)
	return nil
}

func (m *memoryStore) DisableRemote(string) {}

// singleSession mimics a caller holding one engine that follows the signed-in identity.
type singleSession struct {
	engine *goals.Engine
}

func (s *singleSession) With(_ context.Context, _ string, fn func(*goals.Engine) error) error {
	return fn(s.engine)
}

func newBridge() (*Bridge, *memoryStore) {
	store := &memoryStore{docs: map[string][]byte{}}
	engine := goals.NewEngine(store)
	engine.Initialize(context.Background())
	return New(&singleSession{engine: engine}, nil), store
}

func TestUnauthenticatedGetsEmptyProfile(t *testing.T) {
	bridge, _ := newBridge()
	user, err := bridge.CurrentUser(context.Background(), domain.Claims{Subject: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, domain.User{}, user)
}

func TestCurrentUserSwitchesNamespaceAndMerges(t *testing.T) {
	bridge, store := newBridge()
	claims := domain.Claims{
		Authenticated:     true,
		ObjectID:          "oid-1",
		Subject:           "sub-1",
		PreferredUsername: "grace@example.com",
	}

	user, err := bridge.CurrentUser(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, "oid-1", user.ObjectID)
	assert.Equal(t, "grace@example.com", user.Email)
	assert.Equal(t, "grace", user.Username)
	assert.Contains(t, store.docs, "user_oid-1.json")

	var persisted domain.User
	require.NoError(t, json.Unmarshal(store.docs["user_oid-1.json"], &persisted))
	assert.Equal(t, "grace", persisted.Username)
}

func TestMergeKeepsCustomUsername(t *testing.T) {
	user := domain.User{Username: "Captain", ObjectID: "x"}
	merged, changed := Merge(user, domain.Claims{Authenticated: true, Subject: "x", Name: "Grace Hopper", Email: "g@h.io"})
	assert.True(t, changed)
	assert.Equal(t, "Captain", merged.Username)
	assert.Equal(t, "g@h.io", merged.Email)

	merged, changed = Merge(merged, domain.Claims{Authenticated: true, Subject: "x"})
	assert.False(t, changed)
	assert.Equal(t, "g@h.io", merged.Email, "empty claims never clear values")

	placeholder := domain.User{Username: domain.DefaultUsername}
	merged, _ = Merge(placeholder, domain.Claims{Name: "Grace Hopper"})
	assert.Equal(t, "Grace Hopper", merged.Username)
}

func TestClaimsIncludesIdentity(t *testing.T) {
	bridge, _ := newBridge()
	raw := bridge.Claims(context.Background(), domain.Claims{
		Authenticated: true,
		Subject:       "sub-9",
		Raw:           map[string]string{"sub": "sub-9", "tid": "tenant"},
	})
	assert.Equal(t, "sub-9", raw["identity"])
	assert.Equal(t, "tenant", raw["tid"])
}
