package storage

import (
	"context"
	"io"
	"time"
)

// Package storage holds the object-store abstraction used to archive feed
// audit dumps. Implementations stream content and never touch local disk.

// PutOptions carry optional upload parameters. Size must be the exact byte
// count when known; pass -1 to let the backend chunk the stream.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// ObjectStore is an S3-compatible store for report audit artifacts.
type ObjectStore interface {
	// Put uploads the reader's content under key.
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (ObjectInfo, error)
	// Get streams an object's content back with its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// PresignGet returns a time-limited download URL for the object.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
