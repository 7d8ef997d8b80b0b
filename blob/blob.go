package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Get when no object exists at the URL.
	ErrNotFound = errors.New("blob not found")
	// ErrExists is returned by PutIfAbsent when the key is already taken.
	ErrExists = errors.New("blob already exists")
)

// BlobStore is the interface for pluggable blob storage backends.
type BlobStore interface {
	Put(ctx context.Context, data []byte, mime, key string) (url string, err error)
	PutIfAbsent(ctx context.Context, data []byte, mime, key string) (url string, err error)
	Get(ctx context.Context, url string) ([]byte, error)
	// URL returns the URL Put would return for key, without writing.
	URL(key string) string
}

// BlobConfig is a minimal struct for blob store configuration.
type BlobConfig struct {
	Driver    string
	Directory string
	Bucket    string
	Prefix    string
	Region    string
}

// NewDefaultBlobStore returns a BlobStore based on config, or a
// FilesystemBlobStore under ./.visitorcount/blobs if config is nil or empty.
func NewDefaultBlobStore(ctx context.Context, cfg *BlobConfig) (BlobStore, error) {
	if cfg == nil || cfg.Driver == "" || cfg.Driver == "filesystem" {
		dir := "./.visitorcount/blobs"
		if cfg != nil && cfg.Directory != "" {
			dir = cfg.Directory
		}
		return NewFilesystemBlobStore(dir)
	}
	if cfg.Driver == "s3" {
		if cfg.Bucket == "" || cfg.Region == "" {
			return nil, fmt.Errorf("s3 driver requires bucket and region")
		}
		return NewS3BlobStore(ctx, cfg.Bucket, cfg.Prefix, cfg.Region)
	}
	return nil, fmt.Errorf("unsupported blob driver: %s", cfg.Driver)
}

// validKey rejects keys that could escape the store's namespace.
func validKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty blob key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("invalid blob key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("invalid blob key %q", key)
		}
	}
	return nil
}
