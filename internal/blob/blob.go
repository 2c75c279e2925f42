// Package blob abstracts binary storage for inspection photos. Records keep
// only an opaque storage key; bytes live behind a Store driver.
package blob

import (
	"context"
	"errors"
)

// Driver identifies a blob backend driver.
type Driver string

const (
	// DriverMemory is the in-memory test driver.
	DriverMemory Driver = "memory"
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem Driver = "filesystem"
	// DriverS3 is the S3-compatible driver.
	DriverS3 Driver = "s3"
)

// ErrNotFound indicates no blob exists under the given key.
var ErrNotFound = errors.New("blob not found")

// Info describes stored blob metadata.
type Info struct {
	Key         string
	Size        int64
	ContentType string
}

// Store is the interface for blob storage backends.
type Store interface {
	Put(ctx context.Context, key string, content []byte, contentType string) (Info, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
