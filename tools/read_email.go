package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/k3a/html2text"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/willmeyers/jmap-mcp-server/jmap"
)

const defaultMaxBodyChars = 20000

// ReadEmailHandler creates a handler for reading one email with its body
func ReadEmailHandler(client EmailReader) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		emailID := stringArg(args, "email_id")
		if err := validateEmailID(emailID); err != nil {
			return mcp.NewToolResultError("Error: " + err.Error()), nil
		}

		includeHTML := boolArg(args, "include_html", false)
		maxChars := intArg(args, "max_body_chars", defaultMaxBodyChars)
		if maxChars < 1 {
			maxChars = defaultMaxBodyChars
		}

		email, err := client.GetEmail(ctx, emailID, jmap.GetOptions{Full: true})
		if errors.Is(err, jmap.ErrEmailNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Email with ID '%s' not found", emailID)), nil
		}
		if err != nil {
			return failure("reading email", err), nil
		}

		return success(renderEmail(*email, includeHTML, maxChars), email), nil
	}
}

func renderEmail(e jmap.Email, includeHTML bool, maxChars int) string {
	lines := []string{"# " + subjectLine(e), "", "## Email Details", ""}

	if len(e.From) > 0 {
		lines = append(lines, "**From:** "+formatAddresses(e.From))
	}
	if len(e.To) > 0 {
		lines = append(lines, "**To:** "+formatAddresses(e.To))
	}
	if len(e.CC) > 0 {
		lines = append(lines, "**CC:** "+formatAddresses(e.CC))
	}
	if len(e.ReplyTo) > 0 {
		lines = append(lines, "**Reply-To:** "+formatAddresses(e.ReplyTo))
	}
	if e.ReceivedAt != nil {
		lines = append(lines, "**Received:** "+e.ReceivedAt.Format(dateSecLayout))
	}
	if e.SentAt != nil && (e.ReceivedAt == nil || !e.SentAt.Equal(*e.ReceivedAt)) {
		lines = append(lines, "**Sent:** "+e.SentAt.Format(dateSecLayout))
	}
	if e.Size > 0 {
		lines = append(lines, "**Size:** "+formatSize(e.Size))
	}
	lines = append(lines, "**ID:** "+e.ID, "")

	lines = append(lines, "## Email Content (Text)", "")
	switch {
	case e.TextBody != "":
		lines = append(lines, truncate(e.TextBody, maxChars), "")
	case e.HTMLBody != "":
		lines = append(lines, truncate(strings.TrimSpace(html2text.HTML2Text(e.HTMLBody)), maxChars), "", "*Converted from HTML.*", "")
	case e.Preview != "":
		lines = append(lines, e.Preview, "", "*Note: This is a preview. The message has no decodable body part.*", "")
	default:
		lines = append(lines, "*(no body content)*", "")
	}

	if includeHTML && e.HTMLBody != "" {
		lines = append(lines, "## Email Content (HTML)", "", truncate(e.HTMLBody, maxChars), "")
	}

	if len(e.Attachments) > 0 {
		lines = append(lines, "## Attachments", "")
		for i, a := range e.Attachments {
			name := a.Name
			if name == "" {
				name = "(unnamed)"
			}
			lines = append(lines, fmt.Sprintf("%d. %s (%s, %s)", i+1, name, a.Type, formatSize(a.Size)))
		}
		lines = append(lines, "")
	}

	if bs := e.BodyStructure; bs != nil {
		lines = append(lines, "## Body Structure", "", "**Type:** "+bs.Type)
		if bs.Size > 0 {
			lines = append(lines, fmt.Sprintf("**Size:** %d bytes", bs.Size))
		}
		if len(bs.SubParts) > 0 {
			lines = append(lines, fmt.Sprintf("**Parts:** %d parts", len(bs.SubParts)))
			for i, p := range bs.SubParts {
				lines = append(lines, fmt.Sprintf("  %d. %s", i+1, p.Type))
			}
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
