package tools

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/willmeyers/jmap-mcp-server/jmap"
)

// failure reports a backend error as a tool error result. JMAP failures are
// prefixed "JMAP error:", anything else "Unexpected error <action>:".
func failure(action string, err error) *mcp.CallToolResult {
	var je *jmap.Error
	if errors.As(err, &je) {
		slog.Error("jmap call failed", "action", action, "op", je.Op, "jmap_type", je.Type, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("JMAP error: %v", err))
	}
	slog.Error("tool call failed", "action", action, "error", err)
	return mcp.NewToolResultError(fmt.Sprintf("Unexpected error %s: %v", action, err))
}

// success returns the markdown text together with the structured payload.
func success(markdown string, structured interface{}) *mcp.CallToolResult {
	return mcp.NewToolResultStructured(structured, markdown)
}
