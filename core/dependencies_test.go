package core

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/awantoch/visitorcount/config"
	"github.com/awantoch/visitorcount/constants"
	"github.com/awantoch/visitorcount/storage"
	"github.com/awantoch/visitorcount/utils"
	"github.com/stretchr/testify/require"
)

func TestInitializeDependencies_Memory(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	deps, cleanup, err := InitializeDependencies(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()
	require.IsType(t, &storage.MemoryTable{}, deps.Table)
	require.NotNil(t, deps.Bus)

	n, err := deps.Counter.Visit(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestInitializeDependencies_SQLitePersists(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Storage: config.StorageConfig{
		ConnectionString: "sqlite://" + filepath.Join(t.TempDir(), "counter.db"),
	}}
	config.ApplyDefaults(cfg)

	deps, cleanup, err := InitializeDependencies(ctx, cfg)
	require.NoError(t, err)
	_, err = deps.Counter.Visit(ctx)
	require.NoError(t, err)
	cleanup()

	deps, cleanup, err = InitializeDependencies(ctx, cfg)
	require.NoError(t, err)
	defer cleanup()
	n, err := deps.Counter.Visit(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestInitializeDependencies_BadEventDriverFallsBack(t *testing.T) {
	cfg := &config.Config{Event: &config.EventConfig{Driver: "kafka"}}
	config.ApplyDefaults(cfg)
	deps, cleanup, err := InitializeDependencies(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, deps.Bus)
}

func TestInitializeDependencies_AppliesLogLevel(t *testing.T) {
	t.Cleanup(func() { _ = utils.SetLevel("info") })

	cfg := &config.Config{Log: config.LogConfig{Level: "warn"}}
	config.ApplyDefaults(cfg)
	_, cleanup, err := InitializeDependencies(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()
	require.Equal(t, "warn", utils.LogLevel())

	cfg.Log.Level = "verbose"
	_, _, err = InitializeDependencies(context.Background(), cfg)
	require.Error(t, err)
}

func TestInitializeDependencies_WarnsOnMemoryStorage(t *testing.T) {
	var buf bytes.Buffer
	utils.SetInternalOutput(&buf)
	defer utils.SetInternalOutput(os.Stderr)

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	_, cleanup, err := InitializeDependencies(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()
	require.Contains(t, buf.String(), constants.LogMemoryStorage)
}

func TestInitializeDependencies_BadConnectionString(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{ConnectionString: "redis://localhost"}}
	config.ApplyDefaults(cfg)
	_, _, err := InitializeDependencies(context.Background(), cfg)
	require.Error(t, err)
}
