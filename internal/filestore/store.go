// Package filestore reads CSV files out of an object store and stages them
// on local disk, where the backend can bulk-load them by path.
//
// Usage:
//
//	cfg := filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	src := filestore.NewSource(store, cfg, []string{".csv"}, log)
//	path, err := src.Stage(ctx, "imports/item.csv")
package filestore

import "context"

// Store is the interface object storage providers implement.
// It is scoped to read operations.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// ListObjects returns the objects in bucket that match opts.
	ListObjects(ctx context.Context, bucket string, opts ListOptions) ([]ObjectInfo, error)

	// GetObject opens a streaming handle to the object at key.
	// The caller MUST call Object.Close() after reading.
	GetObject(ctx context.Context, bucket, key string) (Object, error)

	// StatObject returns metadata for the object at key without
	// downloading its content.
	StatObject(ctx context.Context, bucket, key string) (*ObjectInfo, error)

	// Download writes the object at key to the local file dest.
	Download(ctx context.Context, bucket, key, dest string) error
}
