package jmap

import (
	"time"
)

// Mailbox is a JMAP mailbox reduced to the fields tools expose.
type Mailbox struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role,omitempty"`
	ParentID     string `json:"parentId,omitempty"`
	SortOrder    uint64 `json:"sortOrder"`
	TotalEmails  uint64 `json:"totalEmails"`
	UnreadEmails uint64 `json:"unreadEmails"`
}

// Address is a mailbox address with an optional display name.
type Address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// String formats the address as "Name <email>" or the bare email.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return a.Name + " <" + a.Email + ">"
}

// BodyPart describes one MIME part of a message.
type BodyPart struct {
	PartID   string     `json:"partId,omitempty"`
	BlobID   string     `json:"blobId,omitempty"`
	Type     string     `json:"type"`
	Name     string     `json:"name,omitempty"`
	Size     uint64     `json:"size"`
	SubParts []BodyPart `json:"subParts,omitempty"`
}

// Email represents a message as returned by Email/get
type Email struct {
	ID            string     `json:"id"`
	ThreadID      string     `json:"threadId,omitempty"`
	MailboxIDs    []string   `json:"mailboxIds,omitempty"`
	Subject       string     `json:"subject"`
	From          []Address  `json:"from"`
	To            []Address  `json:"to,omitempty"`
	CC            []Address  `json:"cc,omitempty"`
	BCC           []Address  `json:"bcc,omitempty"`
	ReplyTo       []Address  `json:"replyTo,omitempty"`
	ReceivedAt    *time.Time `json:"receivedAt,omitempty"`
	SentAt        *time.Time `json:"sentAt,omitempty"`
	Size          uint64     `json:"size"`
	Preview       string     `json:"preview,omitempty"`
	Unread        bool       `json:"unread"`
	Flagged       bool       `json:"flagged,omitempty"`
	Draft         bool       `json:"draft,omitempty"`
	HasAttachment bool       `json:"hasAttachment"`
	TextBody      string     `json:"textBody,omitempty"`
	HTMLBody      string     `json:"htmlBody,omitempty"`
	BodyStructure *BodyPart  `json:"bodyStructure,omitempty"`
	Attachments   []BodyPart `json:"attachments,omitempty"`
}

// Identity is a sender address the account may submit mail from.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// SearchFilters contains filter options for searching emails
type SearchFilters struct {
	MailboxID     string
	Text          string
	From          string
	To            string
	Subject       string
	UnreadOnly    bool
	HasAttachment bool
	After         *time.Time
	Before        *time.Time
	Limit         int
}

// SearchResult holds one page of Email/query results with the matching emails.
type SearchResult struct {
	IDs    []string `json:"ids"`
	Total  int      `json:"total"`
	Limit  int      `json:"limit"`
	Emails []Email  `json:"emails"`
}

// GetOptions controls how much of each email Email/get returns.
type GetOptions struct {
	// Full fetches headers, body structure and decoded body values.
	Full bool
	// MaxBodyBytes caps each fetched body value. Zero uses DefaultMaxBodyBytes.
	MaxBodyBytes int
}

// Draft contains the fields for a new draft message
type Draft struct {
	From     *Address
	To       []Address
	CC       []Address
	BCC      []Address
	Subject  string
	TextBody string
	HTMLBody string
}
