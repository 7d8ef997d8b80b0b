package constants

// Counter Record identity and attribute
const (
	CounterPartitionKey = "stats"
	CounterRowKey       = "visitors"
	CounterCountField   = "count"
)

// ============================================================================
// EVENTS
// ============================================================================

// Event Bus Drivers
const (
	EventDriverMemory = "memory"
	EventDriverNATS   = "nats"
)

// Event Topics
const (
	TopicVisitorCounted = "visitor.counted"
)

// NATS streaming identity
const (
	NATSClusterID = "visitor-counter"
	NATSClientID  = "visitor-counter-client"
)

// ============================================================================
// TELEMETRY
// ============================================================================

// Tracing Exporters
const (
	TracingExporterNone   = "none"
	TracingExporterStdout = "stdout"
	TracingExporterOTLP   = "otlp"
)

// Default OTLP HTTP endpoint (host:port)
const (
	DefaultOTLPEndpoint = "localhost:4318"
)

// Span names
const (
	SpanVisit       = "counter.Visit"
	SpanGetOrCreate = "counter.GetOrCreate"
	SpanIncrement   = "counter.Increment"
	SpanCurrent     = "counter.Current"
)
