package repository

import "context"

// DocumentRepository stores opaque JSON documents by key.
// Get returns domain.ErrDocumentNotFound when the key is absent.
type DocumentRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
