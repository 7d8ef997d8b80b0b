package constants

// Configuration Files
const (
	ConfigFileName   = "counter.config.json"
	ConfigSchemaFile = "counter.config.schema.json"
)

// Environment Variables
const (
	EnvDebug            = "COUNTER_DEBUG"
	EnvConnectionString = "COUNTER_STORAGE_CONNECTION_STRING"
	// EnvLegacyConnectionString is read when EnvConnectionString is unset.
	EnvLegacyConnectionString = "AzureWebJobsStorage"
	EnvTableName              = "COUNTER_TABLE_NAME"
	EnvEventDriver            = "COUNTER_EVENT_DRIVER"
	EnvEventURL               = "COUNTER_EVENT_URL"
	EnvHTTPHost               = "COUNTER_HTTP_HOST"
	EnvHTTPPort               = "COUNTER_HTTP_PORT"
	EnvTracingExporter        = "COUNTER_TRACING_EXPORTER"
	EnvTracingEndpoint        = "COUNTER_TRACING_ENDPOINT"
	EnvTestPostgresDSN        = "COUNTER_TEST_POSTGRES_DSN"
)

// Defaults
const (
	DefaultTableName   = "VisitorCount"
	DefaultHTTPHost    = "0.0.0.0"
	DefaultHTTPPort    = 7071
	DefaultServiceName = "visitor-counter"
	DefaultLogLevel    = "info"
)

// Storage Drivers
const (
	StorageDriverMemory     = "memory"
	StorageDriverSQLite     = "sqlite"
	StorageDriverPostgres   = "postgres"
	StorageDriverS3         = "s3"
	StorageDriverFilesystem = "dir"
)
