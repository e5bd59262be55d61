package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/lifetrack/domain"
	"github.com/fastygo/lifetrack/internal/infrastructure/buffer"
	"github.com/fastygo/lifetrack/repository"
)

const (
	ModeRemote    = "remote"
	ModeLocalOnly = "local-only"
)

// PendingQueue receives remote writes that could not be applied immediately.
type PendingQueue interface {
	Enqueue(item buffer.Item) error
	Pending(key string) (bool, error)
}

// BlobTiers lists the repositories behind a BlobStore. Only Local is required.
type BlobTiers struct {
	Remote  repository.DocumentRepository
	Cache   repository.DocumentRepository
	Local   repository.DocumentRepository
	Pending PendingQueue
}

// BlobStore stores JSON documents across a remote object store, an optional
// cache and a local BoltDB mirror. Reads prefer the remote tier unless it is
// disabled or a newer write for the key is still pending.
type BlobStore struct {
	tiers  BlobTiers
	logger *zap.Logger

	mu             sync.RWMutex
	remoteDisabled bool
	disabledReason string
}

func NewBlobStore(tiers BlobTiers, logger *zap.Logger) *BlobStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := &BlobStore{tiers: tiers, logger: logger}
	if tiers.Remote == nil {
		store.remoteDisabled = true
		store.disabledReason = "remote storage not configured"
	}
	return store
}

// Fork returns a store sharing the same tiers with its own remote mode flag,
// so one session falling back to local storage does not affect the others.
func (b *BlobStore) Fork() *BlobStore {
	return NewBlobStore(b.tiers, b.logger)
}

// DisableRemote switches the store to local-only mode for the rest of its
// life. Later writes stay local and are never replayed to the remote.
func (b *BlobStore) DisableRemote(reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.remoteDisabled {
		return
	}
	b.remoteDisabled = true
	b.disabledReason = reason
	b.logger.Warn("remote storage disabled, using local tier", zap.String("reason", reason))
}

// Mode reports whether the remote tier is in use.
func (b *BlobStore) Mode() string {
	if b.remoteEnabled() {
		return ModeRemote
	}
	return ModeLocalOnly
}

func (b *BlobStore) remoteEnabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.remoteDisabled && b.tiers.Remote != nil
}

// Load decodes the document stored under key into dst. It reports false when
// the document does not exist. Unlike Get, a remote failure is returned to the
// caller so it can decide to disable the remote tier.
func (b *BlobStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	data, err := b.read(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (b *BlobStore) read(ctx context.Context, key string) ([]byte, error) {
	if !b.remoteEnabled() || b.hasPending(key) {
		return b.tiers.Local.Get(ctx, key)
	}

	if b.tiers.Cache != nil {
		data, err := b.tiers.Cache.Get(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			b.logger.Debug("cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	data, err := b.tiers.Remote.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := b.tiers.Local.Put(ctx, key, data); err != nil {
		b.logger.Warn("failed to mirror document locally", zap.String("key", key), zap.Error(err))
	}
	b.fillCache(ctx, key, data)
	return data, nil
}

func (b *BlobStore) hasPending(key string) bool {
	if b.tiers.Pending == nil {
		return false
	}
	pending, err := b.tiers.Pending.Pending(key)
	if err != nil {
		b.logger.Warn("pending lookup failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return pending
}

// Put writes value to every tier. The local mirror is always written; a
// rejected remote write is queued for replay. An error is returned only when
// neither the local nor the remote path accepted the document.
func (b *BlobStore) Put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "encode "+key, err)
	}

	localErr := b.tiers.Local.Put(ctx, key, data)
	if localErr != nil {
		b.logger.Error("local write failed", zap.String("key", key), zap.Error(localErr))
	}

	remoteErr := b.writeRemote(ctx, key, buffer.OperationPut, data)
	if remoteErr != nil {
		b.invalidate(ctx, key)
		if localErr != nil {
			return domain.WrapError(domain.ErrCodeUnavailable, "store "+key, errors.Join(localErr, remoteErr))
		}
		return nil
	}

	b.fillCache(ctx, key, data)
	return nil
}

// Delete removes the document from every tier.
func (b *BlobStore) Delete(ctx context.Context, key string) error {
	b.invalidate(ctx, key)

	localErr := b.tiers.Local.Delete(ctx, key)
	if localErr != nil {
		b.logger.Error("local delete failed", zap.String("key", key), zap.Error(localErr))
	}

	remoteErr := b.writeRemote(ctx, key, buffer.OperationDelete, nil)
	if localErr != nil && remoteErr != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "delete "+key, errors.Join(localErr, remoteErr))
	}
	return nil
}

// writeRemote applies a change to the remote tier. A change to a key that
// still has a pending write is queued behind it so replay keeps the order; a
// change the remote rejects is queued as well. A store whose remote was
// disabled writes nothing remote: its state was built without the remote
// copy and must not replace it. It returns nil when the change was applied
// or queued.
func (b *BlobStore) writeRemote(ctx context.Context, key, operation string, data []byte) error {
	if b.tiers.Remote == nil {
		return errRemoteNotConfigured
	}
	if !b.remoteEnabled() {
		b.logger.Debug("remote disabled, change kept local", zap.String("key", key), zap.String("operation", operation))
		return errRemoteDisabled
	}

	if b.hasPending(key) {
		b.logger.Debug("queueing behind pending write", zap.String("key", key), zap.String("operation", operation))
		return b.enqueue(key, operation, data)
	}

	var err error
	if operation == buffer.OperationDelete {
		err = b.tiers.Remote.Delete(ctx, key)
	} else {
		err = b.tiers.Remote.Put(ctx, key, data)
	}
	if err == nil {
		return nil
	}
	b.logger.Warn("remote write failed, queueing", zap.String("key", key), zap.String("operation", operation), zap.Error(err))
	return b.enqueue(key, operation, data)
}

func (b *BlobStore) enqueue(key, operation string, data []byte) error {
	if b.tiers.Pending == nil {
		return errNoPendingQueue
	}
	if err := b.tiers.Pending.Enqueue(buffer.Item{Key: key, Operation: operation, Data: data}); err != nil {
		b.logger.Error("failed to queue remote write", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (b *BlobStore) fillCache(ctx context.Context, key string, data []byte) {
	if b.tiers.Cache == nil {
		return
	}
	if err := b.tiers.Cache.Put(ctx, key, data); err != nil {
		b.logger.Debug("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (b *BlobStore) invalidate(ctx context.Context, key string) {
	if b.tiers.Cache == nil {
		return
	}
	if err := b.tiers.Cache.Delete(ctx, key); err != nil {
		b.logger.Debug("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

var (
	errRemoteNotConfigured = errors.New("remote storage not configured")
	errRemoteDisabled      = errors.New("remote storage disabled")
	errNoPendingQueue      = errors.New("no pending queue configured")
)

// Get returns the document stored under key, or false when it is absent or
// cannot be read. Failures are logged and never returned.
func Get[T any](ctx context.Context, store *BlobStore, key string) (T, bool) {
	var value T
	found, err := store.Load(ctx, key, &value)
	if err != nil {
		store.logger.Warn("document read failed", zap.String("key", key), zap.Error(err))
		var zero T
		return zero, false
	}
	return value, found
}
