package constants

// MCP Tool Names
const (
	MCPToolGetVisitorCount = "getVisitorCount"
	MCPToolRecordVisit     = "recordVisit"
)

// MCP Tool Descriptions
const (
	MCPDescGetVisitorCount = "Return the current visitor count without changing it"
	MCPDescRecordVisit     = "Record one visit and return the new visitor count"
)
