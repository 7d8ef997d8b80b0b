package mcp

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/awantoch/visitorcount/constants"
	"github.com/awantoch/visitorcount/counter"
	"github.com/awantoch/visitorcount/utils"
	mcp "github.com/metoro-io/mcp-golang"
	mcphttp "github.com/metoro-io/mcp-golang/transport/http"
	mcpstdio "github.com/metoro-io/mcp-golang/transport/stdio"
)

// ToolRegistration holds a tool's registration info for the MCP server.
type ToolRegistration struct {
	Name        string
	Description string
	Handler     any // must be a func(ctx, args) (*mcp.ToolResponse, error)
}

// Serve starts the visitor counter MCP server over stdio or HTTP at addr.
func Serve(svc *counter.Service, debug bool, stdio bool, addr string) error {
	// If using stdio transport and debug is disabled, silence user-facing logs on stdout; keep internal logs on stderr
	if stdio && !debug {
		utils.SetUserOutput(io.Discard)
	}

	// Create MCP server transport
	var server *mcp.Server
	if stdio {
		utils.Info("Starting MCP server on stdio...")
		transport := mcpstdio.NewStdioServerTransport()
		server = mcp.NewServer(transport)
	} else {
		utils.Info("Starting MCP server on HTTP at %s...", addr)
		transport := mcphttp.NewHTTPTransport(constants.RouteMCP).WithAddr(addr)
		server = mcp.NewServer(transport)
	}
	if err := RegisterAllTools(server, CounterTools(svc)); err != nil {
		return err
	}
	// Start serving
	if err := server.Serve(); err != nil {
		return err
	}
	// For stdio transport, wait for termination signals and exit gracefully
	if stdio {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		sig := <-sigCh
		utils.Info("Received signal %v, shutting down MCP stdio server", sig)
	}
	return nil
}

// RegisterAllTools registers all provided tools with the MCP server.
func RegisterAllTools(server *mcp.Server, tools []ToolRegistration) error {
	for _, t := range tools {
		if err := server.RegisterTool(t.Name, t.Description, t.Handler); err != nil {
			return utils.Errorf("register tool %s: %w", t.Name, err)
		}
	}
	return nil
}

// EmptyArgs is the argument type for tools that take no input.
type EmptyArgs struct{}

type countResult struct {
	Count int64 `json:"count"`
}

// CounterTools exposes the counter service as MCP tools.
func CounterTools(svc *counter.Service) []ToolRegistration {
	return []ToolRegistration{
		{
			Name:        constants.MCPToolGetVisitorCount,
			Description: constants.MCPDescGetVisitorCount,
			Handler: func(ctx context.Context, args EmptyArgs) (*mcp.ToolResponse, error) {
				n, err := svc.Current(ctx)
				if err != nil {
					return nil, err
				}
				return countResponse(n)
			},
		},
		{
			Name:        constants.MCPToolRecordVisit,
			Description: constants.MCPDescRecordVisit,
			Handler: func(ctx context.Context, args EmptyArgs) (*mcp.ToolResponse, error) {
				ctx = utils.WithRequestID(ctx, utils.NewRequestID())
				n, err := svc.Visit(ctx)
				if err != nil {
					return nil, err
				}
				return countResponse(n)
			},
		},
	}
}

func countResponse(n int64) (*mcp.ToolResponse, error) {
	res := utils.MarshalJSON(countResult{Count: n})
	if res.Err != nil {
		return nil, res.Err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(string(res.Data))), nil
}
