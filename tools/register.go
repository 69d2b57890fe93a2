package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Options controls which tools are exposed.
type Options struct {
	// ReadOnly omits tools that create, send or modify mail.
	ReadOnly bool
}

// ListMailboxesTool declares list_mailboxes.
func ListMailboxesTool() mcp.Tool {
	return mcp.NewTool("list_mailboxes",
		mcp.WithDescription("List all mailboxes with their role and unread/total email counts. Mailbox names or roles (inbox, sent, drafts, trash, archive, junk) can be passed as 'mailbox' to search_email."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// SearchEmailTool declares search_email.
func SearchEmailTool() mcp.Tool {
	return mcp.NewTool("search_email",
		mcp.WithDescription("Search emails with optional filters, newest first. Returns subject, sender, date, preview and id for each match; pass the id to read_email for the full message."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("query",
			mcp.Description("Full-text search across subject, addresses and body."),
		),
		mcp.WithString("mailbox",
			mcp.Description("Mailbox name or role to search in (case-insensitive). Use list_mailboxes to discover names."),
		),
		mcp.WithString("sender",
			mcp.Description("Only emails whose From contains this text."),
		),
		mcp.WithString("recipient",
			mcp.Description("Only emails whose To contains this text."),
		),
		mcp.WithString("subject",
			mcp.Description("Only emails whose subject contains this text."),
		),
		mcp.WithBoolean("unread_only",
			mcp.Description("Only return unread emails."),
			mcp.DefaultBool(false),
		),
		mcp.WithBoolean("has_attachment",
			mcp.Description("Only return emails with attachments."),
			mcp.DefaultBool(false),
		),
		mcp.WithString("after",
			mcp.Description("Only emails received on or after this date (YYYY-MM-DD or RFC 3339)."),
		),
		mcp.WithString("before",
			mcp.Description("Only emails received before the end of this date (YYYY-MM-DD or RFC 3339)."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of emails to return."),
			mcp.DefaultNumber(defaultSearchLimit),
			mcp.Min(1),
			mcp.Max(maxSearchLimit),
		),
	)
}

// ReadEmailTool declares read_email.
func ReadEmailTool() mcp.Tool {
	return mcp.NewTool("read_email",
		mcp.WithDescription("Read one email by id: headers, dates, size, text body, attachments and MIME structure. Use search_email first to find ids."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("email_id",
			mcp.Required(),
			mcp.MinLength(1),
			mcp.Description("Email id from search_email results."),
		),
		mcp.WithBoolean("include_html",
			mcp.Description("Also include the raw HTML body."),
			mcp.DefaultBool(false),
		),
		mcp.WithNumber("max_body_chars",
			mcp.Description("Truncate each body section to this many characters."),
			mcp.DefaultNumber(defaultMaxBodyChars),
			mcp.Min(1),
		),
	)
}

// ListIdentitiesTool declares list_identities.
func ListIdentitiesTool() mcp.Tool {
	return mcp.NewTool("list_identities",
		mcp.WithDescription("List the sender identities (from addresses) this account may send as."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// SendDraftTool declares send_draft.
func SendDraftTool() mcp.Tool {
	return mcp.NewTool("send_draft",
		mcp.WithDescription("Create an email draft in the Drafts mailbox and optionally send it right away. Calling twice creates duplicate drafts; with send_immediately=true it sends duplicate emails."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithArray("to",
			mcp.Required(),
			mcp.Description("Recipients: addresses such as 'bob@example.com' or 'Bob <bob@example.com>', or objects with 'email' and optional 'name'."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("subject",
			mcp.Description("Subject line."),
		),
		mcp.WithString("text_body",
			mcp.Description("Plain text body."),
		),
		mcp.WithString("html_body",
			mcp.Description("HTML body. When text_body is also given both alternatives are sent."),
		),
		mcp.WithArray("cc",
			mcp.Description("CC recipients, same formats as 'to'."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("bcc",
			mcp.Description("BCC recipients, same formats as 'to'."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("from",
			mcp.Description("Sender address. Defaults to the first identity from list_identities."),
		),
		mcp.WithBoolean("send_immediately",
			mcp.Description("Submit the draft for delivery right after creating it."),
			mcp.DefaultBool(false),
		),
	)
}

// MarkReadTool declares mark_read.
func MarkReadTool() mcp.Tool {
	return mcp.NewTool("mark_read",
		mcp.WithDescription("Mark an email as read or unread. Use search_email to find email ids."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("email_id",
			mcp.Required(),
			mcp.MinLength(1),
			mcp.Description("Email id to mark."),
		),
		mcp.WithBoolean("read",
			mcp.Description("true to mark as read, false to mark as unread."),
			mcp.DefaultBool(true),
		),
	)
}

// Tools binds every tool to its handler.
func Tools(client EmailService, opts Options) []server.ServerTool {
	list := []server.ServerTool{
		{Tool: ListMailboxesTool(), Handler: ListMailboxesHandler(client)},
		{Tool: SearchEmailTool(), Handler: SearchEmailHandler(client)},
		{Tool: ReadEmailTool(), Handler: ReadEmailHandler(client)},
		{Tool: ListIdentitiesTool(), Handler: ListIdentitiesHandler(client)},
	}
	if opts.ReadOnly {
		return list
	}
	return append(list,
		server.ServerTool{Tool: SendDraftTool(), Handler: SendDraftHandler(client)},
		server.ServerTool{Tool: MarkReadTool(), Handler: MarkReadHandler(client)},
	)
}

// Register adds the tools to s.
func Register(s *server.MCPServer, client EmailService, opts Options) {
	s.AddTools(Tools(client, opts)...)
}
