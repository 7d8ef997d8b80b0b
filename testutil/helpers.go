package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/awantoch/visitorcount/constants"
)

// WithCleanDir removes the specified directory before and after running tests.
func WithCleanDir(m *testing.M, dir string) {
	WithCleanDirs(m, dir)
}

// WithCleanDirs removes all specified directories before and after running tests.
func WithCleanDirs(m *testing.M, dirs ...string) {
	// Clean up before tests
	for _, dir := range dirs {
		os.RemoveAll(dir)
	}
	// Run tests
	code := m.Run()
	// Clean up after tests
	for _, dir := range dirs {
		os.RemoveAll(dir)
	}
	os.Exit(code)
}

// UseSQLite points the storage connection string at a fresh SQLite file for
// the duration of t and returns the file path.
func UseSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "counter.db")
	t.Setenv(constants.EnvConnectionString, "sqlite://"+path)
	return path
}

// ClearStorageEnv unsets both connection string variables for the duration of t.
func ClearStorageEnv(t *testing.T) {
	t.Helper()
	t.Setenv(constants.EnvConnectionString, "")
	t.Setenv(constants.EnvLegacyConnectionString, "")
}
