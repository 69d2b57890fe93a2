package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/willmeyers/jmap-mcp-server/jmap"
)

// SendDraftHandler creates a handler that stores a draft and optionally submits it
func SendDraftHandler(client EmailWriter) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		subject, _ := args["subject"].(string)
		textBody, _ := args["text_body"].(string)
		htmlBody, _ := args["html_body"].(string)
		sendNow := boolArg(args, "send_immediately", false)

		if subject == "" && textBody == "" && htmlBody == "" {
			return mcp.NewToolResultError("Error: At least one of subject, text_body, or html_body is required"), nil
		}

		// Validate sizes
		if err := validateSubjectSize(subject); err != nil {
			return mcp.NewToolResultError("Error: " + err.Error()), nil
		}
		if err := validateBodySize("text_body", textBody); err != nil {
			return mcp.NewToolResultError("Error: " + err.Error()), nil
		}
		if err := validateBodySize("html_body", htmlBody); err != nil {
			return mcp.NewToolResultError("Error: " + err.Error()), nil
		}

		// Parse recipients
		to, err := requireAddressList(args, "to")
		if err != nil {
			return mcp.NewToolResultError("Error: " + err.Error()), nil
		}
		cc, err := parseAddressList(args, "cc")
		if err != nil {
			return mcp.NewToolResultError("Error: " + err.Error()), nil
		}
		bcc, err := parseAddressList(args, "bcc")
		if err != nil {
			return mcp.NewToolResultError("Error: " + err.Error()), nil
		}

		draft := jmap.Draft{
			To:       to,
			CC:       cc,
			BCC:      bcc,
			Subject:  subject,
			TextBody: textBody,
			HTMLBody: htmlBody,
		}
		if raw, ok := args["from"]; ok && raw != nil && raw != "" {
			from, err := parseAddressItem("from", raw)
			if err != nil {
				return mcp.NewToolResultError("Error: " + err.Error()), nil
			}
			draft.From = from
		}

		emailID, err := client.CreateDraft(ctx, draft)
		if err != nil {
			return failure("creating email draft", err), nil
		}

		lines := []string{
			"# Email Draft Created",
			"",
			"**Subject:** " + subject,
			"**To:** " + formatEmails(to),
		}
		if len(cc) > 0 {
			lines = append(lines, "**CC:** "+formatEmails(cc))
		}
		if len(bcc) > 0 {
			lines = append(lines, "**BCC:** "+formatEmails(bcc))
		}
		lines = append(lines, "**Email ID:** "+emailID, "")
		if textBody != "" {
			lines = append(lines, "**Text Content:**", truncate(textBody, previewChars), "")
		}

		response := map[string]interface{}{
			"email_id": emailID,
			"subject":  subject,
			"to":       to,
			"sent":     false,
		}

		if !sendNow {
			lines = append(lines, "📝 **Draft saved.** Send it from your mail client, or call this tool again with send_immediately=true.", "")
			return success(strings.Join(lines, "\n"), response), nil
		}

		// A failed submission still leaves the draft in place
		submissionID, err := client.SendDraft(ctx, emailID)
		if err != nil {
			slog.Warn("draft created but submission failed", "email_id", emailID, "error", err, "jmap_type", jmap.ErrorType(err))
			lines = append(lines,
				fmt.Sprintf("❌ **Error sending email:** %v", err),
				"The draft has been saved and can be sent manually.",
				"",
			)
			response["send_error"] = err.Error()
			return success(strings.Join(lines, "\n"), response), nil
		}

		lines = append(lines, "✅ **Email sent successfully!**", "")
		response["sent"] = true
		response["submission_id"] = submissionID
		return success(strings.Join(lines, "\n"), response), nil
	}
}
