package constants

// HTTP Methods
const (
	HTTPMethodGET     = "GET"
	HTTPMethodPOST    = "POST"
	HTTPMethodOPTIONS = "OPTIONS"
)

// Routes
const (
	RouteVisitorCount    = "/GetVisitorCount"
	RouteAPIVisitorCount = "/api/GetVisitorCount"
	RouteHealth          = "/healthz"
	RouteMetrics         = "/metrics"
	RouteMCP             = "/mcp"
)

// Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain"
)

// HTTP Headers
const (
	HeaderContentType  = "Content-Type"
	HeaderAllow        = "Allow"
	HeaderRequestID    = "X-Request-ID"
	HeaderAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAllowMethods = "Access-Control-Allow-Methods"
	HeaderAllowHeaders = "Access-Control-Allow-Headers"
)

// CORS values
const (
	CORSAllowOrigin  = "*"
	CORSAllowMethods = "GET, POST, OPTIONS"
	CORSAllowHeaders = "Content-Type"
)
