package config

// Default directories and file paths for the counter.
const (
	// DefaultConfigDir is the base directory for local counter artifacts.
	DefaultConfigDir = ".visitorcount"
	// DefaultConfigPath is where the CLI looks for a config file.
	DefaultConfigPath = "counter.config.json"
	// DefaultSQLiteDSN is the SQLite file used by `counter serve` when no
	// connection string is configured.
	DefaultSQLiteDSN = DefaultConfigDir + "/counter.db"
)
