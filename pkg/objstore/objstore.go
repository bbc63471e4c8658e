// Package objstore stores uploaded audio bytes. The MinIO backend mirrors a
// production deployment; the local backend writes under a plain directory for
// development.
package objstore

import "context"

// Store reads and writes immutable audio objects keyed by object name.
type Store interface {
	Put(ctx context.Context, objectName string, data []byte, contentType string) error
	Get(ctx context.Context, objectName string) ([]byte, error)
	Remove(ctx context.Context, objectName string) error
	RemoveAll(ctx context.Context) error
}
