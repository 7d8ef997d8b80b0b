package constants

// HTTP Response Messages
const (
	ErrInternalServer = "Internal server error"
	ResponseHealthy   = "healthy"
)

// Log Messages
const (
	LogFunctionTriggered  = "Visitor counter function triggered"
	LogCounterNotFound    = "Counter not found, creating new one"
	LogCounterIncremented = "Visitor count incremented to %d"
	LogCounterRaced       = "Counter created concurrently, re-reading"
	LogPublishFailed      = "Failed to publish visit event: %v"
	LogMemoryStorage      = "Using in-memory storage, counts reset when this instance restarts"
)
