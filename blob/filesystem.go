package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const fileURLPrefix = "file://"

// FilesystemBlobStore implements BlobStore using the local filesystem.
type FilesystemBlobStore struct {
	dir string
}

var _ BlobStore = (*FilesystemBlobStore)(nil)

// NewFilesystemBlobStore creates a new FilesystemBlobStore with the given directory.
// The directory will be created if it does not exist.
func NewFilesystemBlobStore(dir string) (*FilesystemBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &FilesystemBlobStore{dir: abs}, nil
}

func (f *FilesystemBlobStore) URL(key string) string {
	return fileURLPrefix + filepath.Join(f.dir, filepath.FromSlash(key))
}

// Put stores the blob as a file in the directory, replacing any previous
// content atomically. Returns a file:// URL.
func (f *FilesystemBlobStore) Put(ctx context.Context, data []byte, mime, key string) (string, error) {
	path, err := f.prepare(key)
	if err != nil {
		return "", err
	}
	tmpPath, err := writeTemp(path, data)
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return fileURLPrefix + path, nil
}

// PutIfAbsent writes the blob only if no file exists for key. The content is
// written to a temp file first and hard-linked into place, so readers never
// see a partially written blob.
func (f *FilesystemBlobStore) PutIfAbsent(ctx context.Context, data []byte, mime, key string) (string, error) {
	path, err := f.prepare(key)
	if err != nil {
		return "", err
	}
	tmpPath, err := writeTemp(path, data)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmpPath)
	if err := os.Link(tmpPath, path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%s: %w", key, ErrExists)
		}
		return "", err
	}
	return fileURLPrefix + path, nil
}

// Get retrieves the blob from the file:// URL.
func (f *FilesystemBlobStore) Get(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, fileURLPrefix) {
		return nil, fmt.Errorf("invalid file URL: %s", url)
	}
	path := url[len(fileURLPrefix):]
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	return data, err
}

func (f *FilesystemBlobStore) prepare(key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	path := filepath.Join(f.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// writeTemp writes data to a new temp file beside path and returns its name.
func writeTemp(path string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
