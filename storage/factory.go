package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/awantoch/visitorcount/blob"
	"github.com/awantoch/visitorcount/constants"
)

// NewTableFromConnectionString opens the Table a connection string points at.
//
//	""  or memory://                  in-process MemoryTable
//	sqlite://<path>, file:..., *.db   SqliteTable
//	postgres://, postgresql://        PostgresTable
//	s3://bucket/prefix?region=...     BlobTable over S3
//	dir://<path>                      BlobTable over the filesystem
func NewTableFromConnectionString(ctx context.Context, conn, table string) (Table, error) {
	if table == "" {
		table = constants.DefaultTableName
	}
	driver, target, err := ParseConnectionString(conn)
	if err != nil {
		return nil, err
	}
	switch driver {
	case constants.StorageDriverMemory:
		return NewMemoryTable(), nil
	case constants.StorageDriverSQLite:
		t, err := NewSqliteTable(ctx, target, table)
		if err != nil {
			return nil, err
		}
		return t, nil
	case constants.StorageDriverPostgres:
		t, err := NewPostgresTable(ctx, target, table)
		if err != nil {
			return nil, err
		}
		return t, nil
	case constants.StorageDriverS3:
		u, err := url.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("invalid s3 connection string: %w", err)
		}
		region := u.Query().Get("region")
		if region == "" {
			region = os.Getenv("AWS_REGION")
		}
		store, err := blob.NewDefaultBlobStore(ctx, &blob.BlobConfig{
			Driver: "s3",
			Bucket: u.Host,
			Prefix: strings.Trim(u.Path, "/"),
			Region: region,
		})
		if err != nil {
			return nil, err
		}
		return newBlobTable(store, table)
	case constants.StorageDriverFilesystem:
		store, err := blob.NewDefaultBlobStore(ctx, &blob.BlobConfig{Directory: target})
		if err != nil {
			return nil, err
		}
		return newBlobTable(store, table)
	}
	return nil, fmt.Errorf(constants.ErrStorageUnsupported, conn)
}

func newBlobTable(store blob.BlobStore, table string) (Table, error) {
	t, err := NewBlobTable(store, table)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ParseConnectionString returns the storage driver and the driver-specific
// target (file path, DSN or URL) for conn.
func ParseConnectionString(conn string) (driver, target string, err error) {
	conn = strings.TrimSpace(conn)
	lower := strings.ToLower(conn)
	switch {
	case conn == "" || lower == "memory://" || lower == "memory":
		return constants.StorageDriverMemory, "", nil
	case strings.HasPrefix(lower, "sqlite://"):
		path := conn[len("sqlite://"):]
		if path == "" {
			return "", "", fmt.Errorf("sqlite connection string needs a path")
		}
		return constants.StorageDriverSQLite, path, nil
	case strings.HasPrefix(lower, "file:"), strings.HasSuffix(lower, ".db"), lower == ":memory:":
		return constants.StorageDriverSQLite, conn, nil
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return constants.StorageDriverPostgres, conn, nil
	case strings.HasPrefix(lower, "s3://"):
		return constants.StorageDriverS3, conn, nil
	case strings.HasPrefix(lower, "dir://"):
		path := conn[len("dir://"):]
		if path == "" {
			return "", "", fmt.Errorf("dir connection string needs a path")
		}
		return constants.StorageDriverFilesystem, path, nil
	}
	return "", "", fmt.Errorf(constants.ErrStorageUnsupported, conn)
}
