package mcp

import (
	"context"
	"io"
	"testing"

	"github.com/awantoch/visitorcount/constants"
	"github.com/awantoch/visitorcount/counter"
	"github.com/awantoch/visitorcount/storage"
	mcp "github.com/metoro-io/mcp-golang"
	mcpstdio "github.com/metoro-io/mcp-golang/transport/stdio"
)

// startTestServer launches an in-memory stdio MCP server with the given tool registrations and returns a client.
func startTestServer(t *testing.T, regs []ToolRegistration) *mcp.Client {
	serverReader, clientWriter := io.Pipe()
	clientReader, serverWriter := io.Pipe()
	server := mcp.NewServer(mcpstdio.NewStdioServerTransportWithIO(serverReader, serverWriter))
	if err := RegisterAllTools(server, regs); err != nil {
		t.Fatalf("RegisterAllTools failed: %v", err)
	}
	go func() {
		if err := server.Serve(); err != nil {
			t.Errorf("MCP server Serve failed: %v", err)
		}
	}()
	client := mcp.NewClient(mcpstdio.NewStdioServerTransportWithIO(clientReader, clientWriter))
	ctx := context.Background()
	if _, err := client.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize MCP client: %v", err)
	}
	return client
}

func textOf(t *testing.T, resp *mcp.ToolResponse) string {
	t.Helper()
	if resp == nil || len(resp.Content) == 0 || resp.Content[0].TextContent == nil {
		t.Fatalf("Expected text content, got %+v", resp)
	}
	return resp.Content[0].TextContent.Text
}

// TestListTools ensures that the counter tools are returned by ListTools.
func TestListTools(t *testing.T) {
	svc := counter.NewService(storage.NewMemoryTable())
	client := startTestServer(t, CounterTools(svc))
	resp, err := client.ListTools(context.Background(), new(string))
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	if len(resp.Tools) != 2 {
		t.Fatalf("Expected 2 tools, got %d", len(resp.Tools))
	}
	names := map[string]bool{}
	for _, tool := range resp.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{constants.MCPToolGetVisitorCount, constants.MCPToolRecordVisit} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}

// TestCounterTools verifies that recordVisit increments and getVisitorCount only reads.
func TestCounterTools(t *testing.T) {
	svc := counter.NewService(storage.NewMemoryTable())
	client := startTestServer(t, CounterTools(svc))
	ctx := context.Background()

	resp, err := client.CallTool(ctx, constants.MCPToolGetVisitorCount, EmptyArgs{})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if got := textOf(t, resp); got != `{"count":0}` {
		t.Errorf("expected zero count, got %s", got)
	}

	for _, want := range []string{`{"count":1}`, `{"count":2}`} {
		resp, err = client.CallTool(ctx, constants.MCPToolRecordVisit, EmptyArgs{})
		if err != nil {
			t.Fatalf("CallTool failed: %v", err)
		}
		if got := textOf(t, resp); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}

	resp, err = client.CallTool(ctx, constants.MCPToolGetVisitorCount, EmptyArgs{})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if got := textOf(t, resp); got != `{"count":2}` {
		t.Errorf("expected count 2, got %s", got)
	}
}
