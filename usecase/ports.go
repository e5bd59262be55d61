package usecase

import (
	"context"

	"github.com/fastygo/lifetrack/domain"
)

// DocumentStore abstracts the tiered blob store so use cases stay storage-agnostic.
// Load is the only call that surfaces a transport error; Put and Delete
// report failure only when no tier accepted the change.
type DocumentStore interface {
	Load(ctx context.Context, key string, dst any) (bool, error)
	Put(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	DisableRemote(reason string)
}

// ActivityRecorder receives every mutation applied by the goals engine.
type ActivityRecorder interface {
	Record(ctx context.Context, event domain.ActivityEvent) error
}
