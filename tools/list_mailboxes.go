package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ListMailboxesHandler creates a handler for listing mailboxes with their counts
func ListMailboxesHandler(client MailboxReader) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		mailboxes, err := client.GetMailboxes(ctx)
		if err != nil {
			return failure("listing mailboxes", err), nil
		}

		lines := []string{"# Mailboxes", ""}
		for _, mb := range mailboxes {
			role := ""
			if mb.Role != "" {
				role = fmt.Sprintf(" (%s)", mb.Role)
			}
			lines = append(lines, fmt.Sprintf("**%s**%s: %d/%d unread/total emails", mb.Name, role, mb.UnreadEmails, mb.TotalEmails))
		}
		if len(mailboxes) == 0 {
			lines = append(lines, "No mailboxes found.")
		}

		response := map[string]interface{}{
			"count":     len(mailboxes),
			"mailboxes": mailboxes,
		}
		return success(strings.Join(lines, "\n"), response), nil
	}
}
