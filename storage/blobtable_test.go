package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/awantoch/visitorcount/blob"
	"github.com/awantoch/visitorcount/model"
	"github.com/stretchr/testify/require"
)

func newFilesystemBlobTable(t *testing.T, dir string) *BlobTable {
	t.Helper()
	store, err := blob.NewFilesystemBlobStore(dir)
	require.NoError(t, err)
	tbl, err := NewBlobTable(store, "VisitorCount")
	require.NoError(t, err)
	return tbl
}

func TestBlobTable(t *testing.T) {
	runTableContract(t, func(t *testing.T) Table {
		return newFilesystemBlobTable(t, t.TempDir())
	})
}

func TestBlobTable_ObjectLayout(t *testing.T) {
	dir := t.TempDir()
	tbl := newFilesystemBlobTable(t, dir)
	require.NoError(t, tbl.UpsertEntity(context.Background(), model.CounterRecord{Count: 7}.Entity()))
	data, err := os.ReadFile(filepath.Join(dir, "VisitorCount", "stats", "visitors.json"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"count":7`)
}

func TestBlobTable_EscapesKeys(t *testing.T) {
	ctx := context.Background()
	tbl := newFilesystemBlobTable(t, t.TempDir())
	e := &model.Entity{PartitionKey: "a/b", RowKey: "c d", Properties: map[string]any{"count": 1}}
	require.NoError(t, tbl.CreateEntity(ctx, e))
	got, err := tbl.GetEntity(ctx, "a/b", "c d")
	require.NoError(t, err)
	require.Equal(t, "a/b", got.PartitionKey)
	_, err = tbl.GetEntity(ctx, "a", "b")
	require.ErrorIs(t, err, ErrNotFound)
}
