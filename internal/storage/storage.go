package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// ObjectStore is the bucket/key abstraction both pipeline stages write
// through. Implementations: filesystem (development, tests) and MinIO
// (production).
type ObjectStore interface {
	// EnsureBucket creates the bucket when it does not exist yet.
	EnsureBucket(ctx context.Context, bucket string) error
	// Put replaces the object at key atomically where the backend allows.
	Put(ctx context.Context, bucket, key string, data []byte) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	// List returns the keys in bucket ending with suffix, sorted.
	List(ctx context.Context, bucket, suffix string) ([]string, error)
}

// PutJSON marshals v with indentation and writes it at key.
func PutJSON(ctx context.Context, store ObjectStore, bucket, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", bucket, key, err)
	}
	return store.Put(ctx, bucket, key, data)
}
