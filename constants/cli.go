package constants

// CLI Commands and Subcommands
const (
	CmdServe = "serve"
	CmdVisit = "visit"
	CmdShow  = "show"
	CmdMCP   = "mcp"
)

// CLI Short Descriptions
const (
	DescRoot     = "Visitor counter: a tiny HTTP counter backed by a key-value table"
	DescServe    = "Start the visitor counter HTTP server"
	DescVisit    = "Record one visit and print the new count"
	DescShow     = "Print the current count without recording a visit"
	DescMCPServe = "Serve the visitor counter as an MCP server (HTTP or stdio)"
)

// CLI Error Messages
const (
	ErrStorageUnsupported  = "unsupported storage connection string: %s"
	ErrStorageCreateFailed = "failed to create storage: %w"
)

// CLI Default Values
const (
	DefaultMCPAddr = ":9090"
)
