package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// MarkReadHandler creates a handler for marking emails as read/unread
func MarkReadHandler(client EmailWriter) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		// Get required email_id
		emailID := stringArg(args, "email_id")
		if err := validateEmailID(emailID); err != nil {
			return mcp.NewToolResultError("Error: " + err.Error()), nil
		}

		// Get read status (default to true)
		read := boolArg(args, "read", true)

		if err := client.SetSeen(ctx, emailID, read); err != nil {
			return failure("marking email", err), nil
		}

		status := "read"
		if !read {
			status = "unread"
		}

		response := map[string]interface{}{
			"success":  true,
			"email_id": emailID,
			"status":   status,
		}
		return success(fmt.Sprintf("Email %s marked as %s.", emailID, status), response), nil
	}
}
