package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/willmeyers/jmap-mcp-server/jmap"
)

// MockEmailService implements EmailService for testing.
type MockEmailService struct {
	// Return values
	Mailboxes    []jmap.Mailbox
	Search       *jmap.SearchResult
	Email        *jmap.Email
	Identities   []jmap.Identity
	DraftID      string
	SubmissionID string

	// Error injection
	Err     error
	SendErr error

	// Call tracking
	LastMethod  string
	Methods     []string
	LastFilters jmap.SearchFilters
	LastEmailID string
	LastOpts    jmap.GetOptions
	LastDraft   jmap.Draft
	LastSeen    bool
	CallCount   int
}

func (m *MockEmailService) track(method string) {
	m.LastMethod = method
	m.Methods = append(m.Methods, method)
	m.CallCount++
}

func (m *MockEmailService) GetMailboxes(ctx context.Context) ([]jmap.Mailbox, error) {
	m.track("GetMailboxes")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Mailboxes, nil
}

func (m *MockEmailService) FindMailbox(ctx context.Context, nameOrRole string) (*jmap.Mailbox, error) {
	m.track("FindMailbox")
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Mailboxes {
		mb := &m.Mailboxes[i]
		if strings.EqualFold(mb.Name, nameOrRole) || strings.EqualFold(mb.Role, nameOrRole) {
			return mb, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", jmap.ErrMailboxNotFound, nameOrRole)
}

func (m *MockEmailService) SearchEmails(ctx context.Context, filters jmap.SearchFilters) (*jmap.SearchResult, error) {
	m.track("SearchEmails")
	m.LastFilters = filters
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Search == nil {
		return &jmap.SearchResult{}, nil
	}
	return m.Search, nil
}

func (m *MockEmailService) GetEmail(ctx context.Context, id string, opts jmap.GetOptions) (*jmap.Email, error) {
	m.track("GetEmail")
	m.LastEmailID = id
	m.LastOpts = opts
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Email == nil {
		return nil, fmt.Errorf("%w: %s", jmap.ErrEmailNotFound, id)
	}
	return m.Email, nil
}

func (m *MockEmailService) GetIdentities(ctx context.Context) ([]jmap.Identity, error) {
	m.track("GetIdentities")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Identities, nil
}

func (m *MockEmailService) CreateDraft(ctx context.Context, d jmap.Draft) (string, error) {
	m.track("CreateDraft")
	m.LastDraft = d
	if m.Err != nil {
		return "", m.Err
	}
	return m.DraftID, nil
}

func (m *MockEmailService) SendDraft(ctx context.Context, emailID string) (string, error) {
	m.track("SendDraft")
	m.LastEmailID = emailID
	if m.SendErr != nil {
		return "", m.SendErr
	}
	return m.SubmissionID, nil
}

func (m *MockEmailService) SetSeen(ctx context.Context, emailID string, seen bool) error {
	m.track("SetSeen")
	m.LastEmailID = emailID
	m.LastSeen = seen
	return m.Err
}

// newErrMock returns a mock with an error pre-configured
func newErrMock(msg string) *MockEmailService {
	return &MockEmailService{Err: fmt.Errorf("%s", msg)}
}

// newJMAPErrMock returns a mock failing with a JMAP method error.
func newJMAPErrMock(op, typ string) *MockEmailService {
	return &MockEmailService{Err: &jmap.Error{Op: op, Type: typ, Err: fmt.Errorf("%s", typ)}}
}
