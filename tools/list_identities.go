package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ListIdentitiesHandler creates a handler for listing sender identities
func ListIdentitiesHandler(client EmailReader) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		identities, err := client.GetIdentities(ctx)
		if err != nil {
			return failure("listing identities", err), nil
		}

		lines := []string{"# Sender Identities", ""}
		for _, id := range identities {
			name := id.Name
			if name == "" {
				name = "(unnamed)"
			}
			lines = append(lines, fmt.Sprintf("**%s** <%s> (ID: %s)", name, id.Email, id.ID))
		}
		if len(identities) == 0 {
			lines = append(lines, "No sender identities found.")
		}

		response := map[string]interface{}{
			"count":      len(identities),
			"identities": identities,
		}
		return success(strings.Join(lines, "\n"), response), nil
	}
}
