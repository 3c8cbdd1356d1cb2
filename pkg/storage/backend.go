// Package storage provides the archive port for serialized analysis
// reports: a small blob interface with local-filesystem and S3 backends.
package storage

import "context"

// BlobStore abstracts where archived reports live.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
