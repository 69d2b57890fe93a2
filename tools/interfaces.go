package tools

import (
	"context"

	"github.com/willmeyers/jmap-mcp-server/jmap"
)

// MailboxReader defines mailbox lookups.
type MailboxReader interface {
	GetMailboxes(ctx context.Context) ([]jmap.Mailbox, error)
	FindMailbox(ctx context.Context, nameOrRole string) (*jmap.Mailbox, error)
}

// EmailReader defines read-only email operations.
type EmailReader interface {
	SearchEmails(ctx context.Context, filters jmap.SearchFilters) (*jmap.SearchResult, error)
	GetEmail(ctx context.Context, id string, opts jmap.GetOptions) (*jmap.Email, error)
	GetIdentities(ctx context.Context) ([]jmap.Identity, error)
}

// EmailWriter defines mutating email operations.
type EmailWriter interface {
	CreateDraft(ctx context.Context, d jmap.Draft) (string, error)
	SendDraft(ctx context.Context, emailID string) (string, error)
	SetSeen(ctx context.Context, emailID string, seen bool) error
}

// EmailSearcher resolves mailbox names and runs searches.
type EmailSearcher interface {
	MailboxReader
	EmailReader
}

// EmailService combines all JMAP operations. The concrete *jmap.Client satisfies this.
type EmailService interface {
	MailboxReader
	EmailReader
	EmailWriter
}

var _ EmailService = (*jmap.Client)(nil)
