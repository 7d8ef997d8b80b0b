package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFilesystemBlobStore(t *testing.T) *FilesystemBlobStore {
	dir := filepath.Join(t.TempDir(), "blobstore")
	store, err := NewFilesystemBlobStore(dir)
	if err != nil {
		t.Fatalf("NewFilesystemBlobStore failed: %v", err)
	}
	return store
}

func TestFilesystemBlobStore_RoundTrip(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	value := []byte(`{"count":1}`)
	url, err := store.Put(context.Background(), value, "application/json", "VisitorCount/stats/visitors.json")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if url != store.URL("VisitorCount/stats/visitors.json") {
		t.Errorf("Put URL %q does not match URL()", url)
	}
	got, err := store.Get(context.Background(), url)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("expected %q, got %q", value, got)
	}
}

func TestFilesystemBlobStore_PutReplaces(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, []byte("a"), "text/plain", "k"); err != nil {
		t.Fatal(err)
	}
	url, err := store.Put(ctx, []byte("b"), "text/plain", "k")
	if err != nil {
		t.Fatal(err)
	}
	got, _ := store.Get(ctx, url)
	if string(got) != "b" {
		t.Errorf("expected replaced content, got %q", got)
	}
}

func TestFilesystemBlobStore_PutIfAbsent(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	ctx := context.Background()
	if _, err := store.PutIfAbsent(ctx, []byte("first"), "text/plain", "once"); err != nil {
		t.Fatalf("first PutIfAbsent failed: %v", err)
	}
	_, err := store.PutIfAbsent(ctx, []byte("second"), "text/plain", "once")
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	got, _ := store.Get(ctx, store.URL("once"))
	if string(got) != "first" {
		t.Errorf("PutIfAbsent overwrote content: %q", got)
	}
}

func TestFilesystemBlobStore_PutIfAbsentNeverVisiblePartial(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	ctx := context.Background()
	value := bytes.Repeat([]byte("x"), 1<<16)

	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("race/%d.json", i)
		done := make(chan struct{})
		var readErr error
		go func() {
			defer close(done)
			for {
				got, err := store.Get(ctx, store.URL(key))
				if errors.Is(err, ErrNotFound) {
					continue
				}
				if err != nil {
					readErr = err
					return
				}
				if !bytes.Equal(got, value) {
					readErr = fmt.Errorf("read %d bytes of %d", len(got), len(value))
				}
				return
			}
		}()
		if _, err := store.PutIfAbsent(ctx, value, "application/json", key); err != nil {
			t.Fatalf("PutIfAbsent failed: %v", err)
		}
		<-done
		if readErr != nil {
			t.Fatalf("reader saw a partial blob: %v", readErr)
		}
	}

	// conflicts and successes leave no temp files behind
	if _, err := store.PutIfAbsent(ctx, value, "application/json", "race/0.json"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(store.dir, "race"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 20 {
		t.Errorf("expected 20 blobs, found %d entries", len(entries))
	}
}

func TestFilesystemBlobStore_GetMissing(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	_, err := store.Get(context.Background(), store.URL("missing.json"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFilesystemBlobStore_GetInvalidURL(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	if _, err := store.Get(context.Background(), "http://example.com/x"); err == nil {
		t.Error("expected error for non-file URL")
	}
}

func TestFilesystemBlobStore_RejectsEscapingKeys(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	for _, key := range []string{"", "../x", "/abs", "a//b", "a/./b", `a\b`} {
		if _, err := store.Put(context.Background(), []byte("x"), "text/plain", key); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}

func TestNewDefaultBlobStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDefaultBlobStore(context.Background(), &BlobConfig{Driver: "filesystem", Directory: dir})
	if err != nil {
		t.Fatalf("NewDefaultBlobStore failed: %v", err)
	}
	if !strings.HasPrefix(store.URL("k"), "file://") {
		t.Errorf("expected filesystem store, got URL %s", store.URL("k"))
	}

	if _, err := NewDefaultBlobStore(context.Background(), &BlobConfig{Driver: "s3"}); err == nil {
		t.Error("expected error for s3 without bucket/region")
	}
	if _, err := NewDefaultBlobStore(context.Background(), &BlobConfig{Driver: "gcs"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
