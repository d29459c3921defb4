// Package core declares the blob storage contract shared by the snapshot
// archiver and its backends.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrUnsupported reports an optional capability the backend does not provide.
var ErrUnsupported = errors.New("blobstore: unsupported operation")

// Driver identifies a blob storage backend.
type Driver string

// Known blob drivers.
const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

// PutOptions carries the optional attributes attached to a blob at write time.
type PutOptions struct {
	// ContentType is the MIME type of the content, when known.
	ContentType string
	// Metadata is a small flat set of user key-values stored with the blob.
	Metadata map[string]string
}

// SignedURLOptions parameterizes PresignURL.
type SignedURLOptions struct {
	// Method is the HTTP method the URL grants. GET when empty.
	Method string
	// Expiry bounds the validity of the URL; backends default it when zero.
	Expiry time.Duration
	// Headers must accompany the presigned request.
	Headers map[string]string
}

// Info describes a stored blob.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	URL          string            `json:"url,omitempty"`
}

// Store is the contract every blob backend fulfills. Keys are write-once:
// putting an existing key is an error on every backend.
type Store interface {
	// Put writes a new blob under key and returns its descriptor.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get returns the descriptor of the blob under key and a reader over its
	// content. The caller owns closing the reader.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Head returns the descriptor of the blob under key without its content.
	Head(ctx context.Context, key string) (Info, error)
	// Delete removes the blob under key, reporting whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns the descriptors of every blob whose key carries the
	// prefix, in ascending key order.
	List(ctx context.Context, prefix string) ([]Info, error)
	// PresignURL returns a URL granting direct access to the blob under key,
	// or ErrUnsupported when the backend has no such notion.
	PresignURL(ctx context.Context, key string, opts SignedURLOptions) (string, error)
	// Driver identifies the backend.
	Driver() Driver
}
