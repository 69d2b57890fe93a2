package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/willmeyers/jmap-mcp-server/jmap"
)

// SearchEmailHandler creates a handler for searching emails
func SearchEmailHandler(client EmailSearcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		filters := jmap.SearchFilters{
			Text:          stringArg(args, "query"),
			From:          stringArg(args, "sender"),
			To:            stringArg(args, "recipient"),
			Subject:       stringArg(args, "subject"),
			UnreadOnly:    boolArg(args, "unread_only", false),
			HasAttachment: boolArg(args, "has_attachment", false),
			Limit:         clampLimit(intArg(args, "limit", defaultSearchLimit)),
		}

		// Parse date bounds
		if after := stringArg(args, "after"); after != "" {
			t, err := parseDate("after", after, false)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			filters.After = t
		}
		if before := stringArg(args, "before"); before != "" {
			t, err := parseDate("before", before, true)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			filters.Before = t
		}

		// Resolve mailbox name or role to an id
		if name := stringArg(args, "mailbox"); name != "" {
			mb, err := client.FindMailbox(ctx, name)
			if errors.Is(err, jmap.ErrMailboxNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("Mailbox '%s' not found", name)), nil
			}
			if err != nil {
				return failure("searching emails", err), nil
			}
			filters.MailboxID = mb.ID
		}

		result, err := client.SearchEmails(ctx, filters)
		if err != nil {
			return failure("searching emails", err), nil
		}

		response := map[string]interface{}{
			"count":  len(result.Emails),
			"total":  result.Total,
			"emails": result.Emails,
		}

		if len(result.Emails) == 0 {
			return success("No emails found matching the search criteria.", response), nil
		}

		lines := []string{fmt.Sprintf("# Search Results (%d emails)", len(result.Emails)), ""}
		if result.Total > len(result.Emails) {
			lines = []string{fmt.Sprintf("# Search Results (%d of %d emails)", len(result.Emails), result.Total), ""}
		}
		for _, e := range result.Emails {
			from := "Unknown sender"
			if len(e.From) > 0 {
				from = e.From[0].Email
			}
			date := "Unknown date"
			if e.ReceivedAt != nil {
				date = e.ReceivedAt.Format(dateLayout)
			}
			lines = append(lines,
				"## "+subjectLine(e),
				"**From:** "+from,
				"**Date:** "+date,
				"**Preview:** "+truncate(e.Preview, previewChars),
				"**ID:** "+e.ID,
				"",
			)
		}

		return success(strings.Join(lines, "\n"), response), nil
	}
}
