package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/willmeyers/jmap-mcp-server/jmap"
)

// req builds a mcp.CallToolRequest with the given arguments.
func req(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// resultText returns the markdown text of a successful result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success but got error: %+v", result.Content)
	}
	if len(result.Content) == 0 {
		t.Fatal("expected content but got none")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}

// resultJSON round-trips the structured content of a successful result.
func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success but got error: %+v", result.Content)
	}
	data, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("failed to marshal structured content: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("failed to unmarshal structured content: %v", err)
	}
	return m
}

// resultErrText extracts the error message from an error result.
func resultErrText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if !result.IsError {
		t.Fatalf("expected error result but got success: %+v", result.Content)
	}
	if len(result.Content) == 0 {
		return ""
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func sampleMailboxes() []jmap.Mailbox {
	return []jmap.Mailbox{
		{ID: "mb1", Name: "Inbox", Role: "inbox", TotalEmails: 10, UnreadEmails: 3},
		{ID: "mb2", Name: "Sent", Role: "sent", TotalEmails: 4},
		{ID: "mb3", Name: "Projects", TotalEmails: 4, UnreadEmails: 0},
	}
}

func timePtr(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

// --- ListMailboxes ---

func TestListMailboxesHandler(t *testing.T) {
	tests := []struct {
		name     string
		mock     *MockEmailService
		wantErr  string
		contains []string
	}{
		{
			name: "happy path",
			mock: &MockEmailService{Mailboxes: sampleMailboxes()},
			contains: []string{
				"# Mailboxes\n",
				"**Inbox** (inbox): 3/10 unread/total emails",
				"**Sent** (sent): 0/4 unread/total emails",
				"**Projects**: 0/4 unread/total emails",
			},
		},
		{
			name:     "no mailboxes",
			mock:     &MockEmailService{},
			contains: []string{"No mailboxes found."},
		},
		{
			name:    "jmap error",
			mock:    newJMAPErrMock("Mailbox/get", "accountNotFound"),
			wantErr: "JMAP error: Mailbox/get: accountNotFound",
		},
		{
			name:    "other error",
			mock:    newErrMock("connection lost"),
			wantErr: "Unexpected error listing mailboxes: connection lost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := ListMailboxesHandler(tt.mock)
			result, err := handler(context.Background(), req(nil))
			if err != nil {
				t.Fatalf("unexpected Go error: %v", err)
			}
			if tt.wantErr != "" {
				if got := resultErrText(t, result); got != tt.wantErr {
					t.Errorf("error = %q, want %q", got, tt.wantErr)
				}
				return
			}
			text := resultText(t, result)
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("output missing %q:\n%s", want, text)
				}
			}
			data := resultJSON(t, result)
			if int(data["count"].(float64)) != len(tt.mock.Mailboxes) {
				t.Errorf("count = %v, want %d", data["count"], len(tt.mock.Mailboxes))
			}
		})
	}
}

// --- SearchEmail ---

func TestSearchEmailHandler(t *testing.T) {
	found := &jmap.SearchResult{
		IDs:   []string{"e1", "e2"},
		Total: 2,
		Emails: []jmap.Email{
			{
				ID:         "e1",
				Subject:    "Quarterly report",
				From:       []jmap.Address{{Name: "Bob", Email: "bob@example.com"}},
				ReceivedAt: timePtr("2024-03-01T09:30:00Z"),
				Preview:    strings.Repeat("x", 250),
				Unread:     true,
			},
			{ID: "e2", Preview: "short"},
		},
	}

	tests := []struct {
		name       string
		args       map[string]interface{}
		mock       *MockEmailService
		wantErr    string
		checkMock  func(t *testing.T, m *MockEmailService)
		checkText  func(t *testing.T, text string)
	}{
		{
			name: "defaults",
			args: map[string]interface{}{},
			mock: &MockEmailService{Search: found},
			checkMock: func(t *testing.T, m *MockEmailService) {
				if m.LastFilters.Limit != 20 {
					t.Errorf("limit = %d, want 20", m.LastFilters.Limit)
				}
				if m.LastFilters.MailboxID != "" {
					t.Errorf("mailbox = %q, want empty", m.LastFilters.MailboxID)
				}
				if m.LastFilters.UnreadOnly {
					t.Error("unread_only should default to false")
				}
			},
			checkText: func(t *testing.T, text string) {
				for _, want := range []string{
					"# Search Results (2 emails)",
					"## Quarterly report 🔴",
					"**From:** bob@example.com",
					"**Date:** 2024-03-01 09:30",
					"**Preview:** " + strings.Repeat("x", 200) + "...",
					"**ID:** e1",
					"## (No subject)\n**From:** Unknown sender\n**Date:** Unknown date\n**Preview:** short\n**ID:** e2",
				} {
					if !strings.Contains(text, want) {
						t.Errorf("output missing %q:\n%s", want, text)
					}
				}
			},
		},
		{
			name: "all filters",
			args: map[string]interface{}{
				"query":          "invoice",
				"mailbox":        "inbox",
				"sender":         "bob",
				"recipient":      "alice",
				"subject":        "Q1",
				"unread_only":    true,
				"has_attachment": true,
				"after":          "2024-01-01",
				"before":         "2024-01-31T12:00:00Z",
				"limit":          float64(5),
			},
			mock: &MockEmailService{Mailboxes: sampleMailboxes(), Search: found},
			checkMock: func(t *testing.T, m *MockEmailService) {
				f := m.LastFilters
				if f.MailboxID != "mb1" {
					t.Errorf("mailbox = %q, want mb1", f.MailboxID)
				}
				if f.Text != "invoice" || f.From != "bob" || f.To != "alice" || f.Subject != "Q1" {
					t.Errorf("unexpected text filters: %+v", f)
				}
				if !f.UnreadOnly || !f.HasAttachment {
					t.Errorf("expected unread_only and has_attachment: %+v", f)
				}
				if f.Limit != 5 {
					t.Errorf("limit = %d, want 5", f.Limit)
				}
				if f.After == nil || !f.After.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
					t.Errorf("after = %v", f.After)
				}
				if f.Before == nil || !f.Before.Equal(time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)) {
					t.Errorf("before = %v", f.Before)
				}
			},
		},
		{
			name: "mailbox by name",
			args: map[string]interface{}{"mailbox": "projects"},
			mock: &MockEmailService{Mailboxes: sampleMailboxes(), Search: found},
			checkMock: func(t *testing.T, m *MockEmailService) {
				if m.LastFilters.MailboxID != "mb3" {
					t.Errorf("mailbox = %q, want mb3", m.LastFilters.MailboxID)
				}
			},
		},
		{
			name: "limit clamped high",
			args: map[string]interface{}{"limit": float64(500)},
			mock: &MockEmailService{Search: found},
			checkMock: func(t *testing.T, m *MockEmailService) {
				if m.LastFilters.Limit != 100 {
					t.Errorf("limit = %d, want 100", m.LastFilters.Limit)
				}
			},
		},
		{
			name: "limit clamped low",
			args: map[string]interface{}{"limit": float64(0)},
			mock: &MockEmailService{Search: found},
			checkMock: func(t *testing.T, m *MockEmailService) {
				if m.LastFilters.Limit != 1 {
					t.Errorf("limit = %d, want 1", m.LastFilters.Limit)
				}
			},
		},
		{
			name: "bare before date covers the whole day",
			args: map[string]interface{}{"before": "2024-02-10"},
			mock: &MockEmailService{Search: found},
			checkMock: func(t *testing.T, m *MockEmailService) {
				want := time.Date(2024, 2, 10, 23, 59, 59, 0, time.UTC)
				if m.LastFilters.Before == nil || !m.LastFilters.Before.Equal(want) {
					t.Errorf("before = %v, want %v", m.LastFilters.Before, want)
				}
			},
		},
		{
			name: "more results than returned",
			args: map[string]interface{}{"limit": float64(2)},
			mock: &MockEmailService{Search: &jmap.SearchResult{Total: 40, Emails: found.Emails}},
			checkText: func(t *testing.T, text string) {
				if !strings.HasPrefix(text, "# Search Results (2 of 40 emails)") {
					t.Errorf("unexpected heading:\n%s", text)
				}
			},
		},
		{
			name: "no results",
			args: map[string]interface{}{"query": "nothing"},
			mock: &MockEmailService{},
			checkText: func(t *testing.T, text string) {
				if text != "No emails found matching the search criteria." {
					t.Errorf("text = %q", text)
				}
			},
		},
		{
			name:    "unknown mailbox",
			args:    map[string]interface{}{"mailbox": "Receipts"},
			mock:    &MockEmailService{Mailboxes: sampleMailboxes()},
			wantErr: "Mailbox 'Receipts' not found",
		},
		{
			name:    "invalid date",
			args:    map[string]interface{}{"after": "last week"},
			mock:    &MockEmailService{},
			wantErr: `invalid after date "last week": expected YYYY-MM-DD or RFC 3339`,
		},
		{
			name:    "jmap error",
			args:    map[string]interface{}{"query": "x"},
			mock:    newJMAPErrMock("Email/query", "unsupportedFilter"),
			wantErr: "JMAP error: Email/query: unsupportedFilter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := SearchEmailHandler(tt.mock)
			result, err := handler(context.Background(), req(tt.args))
			if err != nil {
				t.Fatalf("unexpected Go error: %v", err)
			}
			if tt.wantErr != "" {
				if got := resultErrText(t, result); got != tt.wantErr {
					t.Errorf("error = %q, want %q", got, tt.wantErr)
				}
				return
			}
			text := resultText(t, result)
			if tt.checkMock != nil {
				tt.checkMock(t, tt.mock)
			}
			if tt.checkText != nil {
				tt.checkText(t, text)
			}
		})
	}
}

func TestSearchEmailHandlerSkipsSearchOnBadMailbox(t *testing.T) {
	mock := &MockEmailService{Mailboxes: sampleMailboxes()}
	handler := SearchEmailHandler(mock)
	result, _ := handler(context.Background(), req(map[string]interface{}{"mailbox": "nope"}))
	if !result.IsError {
		t.Fatal("expected error result")
	}
	for _, m := range mock.Methods {
		if m == "SearchEmails" {
			t.Fatal("SearchEmails should not be called for an unknown mailbox")
		}
	}
}

// --- ReadEmail ---

func TestReadEmailHandler(t *testing.T) {
	full := &jmap.Email{
		ID:         "e1",
		Subject:    "Hello",
		From:       []jmap.Address{{Name: "Bob", Email: "bob@example.com"}},
		To:         []jmap.Address{{Email: "alice@example.com"}},
		CC:         []jmap.Address{{Name: "Carol", Email: "carol@example.com"}},
		ReceivedAt: timePtr("2024-03-01T09:30:15Z"),
		SentAt:     timePtr("2024-03-01T09:29:00Z"),
		Size:       2560,
		Unread:     true,
		TextBody:   "Hi Alice,\nsee attached.",
		HTMLBody:   "<p>Hi Alice,</p>",
		Attachments: []jmap.BodyPart{
			{Name: "report.pdf", Type: "application/pdf", Size: 4096},
		},
		BodyStructure: &jmap.BodyPart{
			Type: "multipart/mixed",
			Size: 7000,
			SubParts: []jmap.BodyPart{
				{Type: "multipart/alternative"},
				{Type: "application/pdf"},
			},
		},
	}

	tests := []struct {
		name     string
		args     map[string]interface{}
		mock     *MockEmailService
		wantErr  string
		contains []string
		excludes []string
	}{
		{
			name: "full message",
			args: map[string]interface{}{"email_id": "e1"},
			mock: &MockEmailService{Email: full},
			contains: []string{
				"# Hello 🔴",
				"## Email Details",
				"**From:** Bob <bob@example.com>",
				"**To:** alice@example.com",
				"**CC:** Carol <carol@example.com>",
				"**Received:** 2024-03-01 09:30:15 UTC",
				"**Sent:** 2024-03-01 09:29:00 UTC",
				"**Size:** 2.5 KB",
				"## Email Content (Text)",
				"Hi Alice,\nsee attached.",
				"## Attachments",
				"1. report.pdf (application/pdf, 4.0 KB)",
				"## Body Structure",
				"**Type:** multipart/mixed",
				"**Size:** 7000 bytes",
				"**Parts:** 2 parts",
				"  1. multipart/alternative",
				"  2. application/pdf",
			},
			excludes: []string{"## Email Content (HTML)"},
		},
		{
			name:     "include html",
			args:     map[string]interface{}{"email_id": "e1", "include_html": true},
			mock:     &MockEmailService{Email: full},
			contains: []string{"## Email Content (HTML)", "<p>Hi Alice,</p>"},
		},
		{
			name: "html only body is converted",
			args: map[string]interface{}{"email_id": "e2"},
			mock: &MockEmailService{Email: &jmap.Email{ID: "e2", Subject: "News", HTMLBody: "<p>Big <b>news</b></p>"}},
			contains: []string{
				"# News\n",
				"Big news",
				"*Converted from HTML.*",
			},
		},
		{
			name:     "preview fallback",
			args:     map[string]interface{}{"email_id": "e3"},
			mock:     &MockEmailService{Email: &jmap.Email{ID: "e3", Preview: "just a preview"}},
			contains: []string{"# (No subject)", "just a preview", "*Note: This is a preview."},
		},
		{
			name:     "body truncated",
			args:     map[string]interface{}{"email_id": "e4", "max_body_chars": float64(5)},
			mock:     &MockEmailService{Email: &jmap.Email{ID: "e4", TextBody: "abcdefghij"}},
			contains: []string{"abcde..."},
			excludes: []string{"abcdef"},
		},
		{
			name:     "sent equal to received is hidden",
			args:     map[string]interface{}{"email_id": "e5"},
			mock:     &MockEmailService{Email: &jmap.Email{ID: "e5", ReceivedAt: timePtr("2024-03-01T09:30:15Z"), SentAt: timePtr("2024-03-01T09:30:15Z")}},
			excludes: []string{"**Sent:**"},
		},
		{
			name:    "missing email_id",
			args:    map[string]interface{}{},
			mock:    &MockEmailService{},
			wantErr: "Error: email_id parameter is required",
		},
		{
			name:    "control characters",
			args:    map[string]interface{}{"email_id": "e1\x00x"},
			mock:    &MockEmailService{},
			wantErr: "Error: email_id contains invalid characters",
		},
		{
			name:    "not found",
			args:    map[string]interface{}{"email_id": "gone"},
			mock:    &MockEmailService{},
			wantErr: "Email with ID 'gone' not found",
		},
		{
			name:    "jmap error",
			args:    map[string]interface{}{"email_id": "e1"},
			mock:    newJMAPErrMock("Email/get", "serverFail"),
			wantErr: "JMAP error: Email/get: serverFail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := ReadEmailHandler(tt.mock)
			result, err := handler(context.Background(), req(tt.args))
			if err != nil {
				t.Fatalf("unexpected Go error: %v", err)
			}
			if tt.wantErr != "" {
				if got := resultErrText(t, result); got != tt.wantErr {
					t.Errorf("error = %q, want %q", got, tt.wantErr)
				}
				return
			}
			text := resultText(t, result)
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("output missing %q:\n%s", want, text)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(text, unwanted) {
					t.Errorf("output should not contain %q:\n%s", unwanted, text)
				}
			}
			if !tt.mock.LastOpts.Full {
				t.Error("expected a full fetch")
			}
		})
	}
}

// --- SendDraft ---

func TestSendDraftHandler(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]interface{}
		mock      *MockEmailService
		wantErr   string
		contains  []string
		checkMock func(t *testing.T, m *MockEmailService)
	}{
		{
			name: "draft only",
			args: map[string]interface{}{
				"to":        []interface{}{"Bob <bob@example.com>"},
				"subject":   "Plans",
				"text_body": "See you at noon",
			},
			mock: &MockEmailService{DraftID: "d1"},
			contains: []string{
				"# Email Draft Created",
				"**Subject:** Plans",
				"**To:** bob@example.com",
				"**Email ID:** d1",
				"**Text Content:**\nSee you at noon",
				"📝 **Draft saved.**",
			},
			checkMock: func(t *testing.T, m *MockEmailService) {
				if m.LastMethod != "CreateDraft" {
					t.Errorf("last method = %q, want CreateDraft", m.LastMethod)
				}
				if len(m.LastDraft.To) != 1 || m.LastDraft.To[0].Name != "Bob" || m.LastDraft.To[0].Email != "bob@example.com" {
					t.Errorf("to = %+v", m.LastDraft.To)
				}
				if m.LastDraft.From != nil {
					t.Errorf("from should be nil, got %+v", m.LastDraft.From)
				}
			},
		},
		{
			name: "send immediately",
			args: map[string]interface{}{
				"to":               "bob@example.com, carol@example.com",
				"cc":               []interface{}{map[string]interface{}{"email": "dave@example.com", "name": "Dave"}},
				"bcc":              "erin@example.com",
				"html_body":        "<p>hi</p>",
				"from":             "Alice <alice@work.example.com>",
				"send_immediately": true,
			},
			mock: &MockEmailService{DraftID: "d2", SubmissionID: "s1"},
			contains: []string{
				"**To:** bob@example.com, carol@example.com",
				"**CC:** dave@example.com",
				"**BCC:** erin@example.com",
				"✅ **Email sent successfully!**",
			},
			checkMock: func(t *testing.T, m *MockEmailService) {
				if len(m.Methods) != 2 || m.Methods[0] != "CreateDraft" || m.Methods[1] != "SendDraft" {
					t.Errorf("methods = %v", m.Methods)
				}
				if m.LastEmailID != "d2" {
					t.Errorf("sent id = %q, want d2", m.LastEmailID)
				}
				if m.LastDraft.From == nil || m.LastDraft.From.Email != "alice@work.example.com" {
					t.Errorf("from = %+v", m.LastDraft.From)
				}
				if len(m.LastDraft.CC) != 1 || m.LastDraft.CC[0].Name != "Dave" {
					t.Errorf("cc = %+v", m.LastDraft.CC)
				}
				if m.LastDraft.HTMLBody != "<p>hi</p>" {
					t.Errorf("html = %q", m.LastDraft.HTMLBody)
				}
			},
		},
		{
			name: "send failure keeps draft",
			args: map[string]interface{}{
				"to":               []interface{}{"bob@example.com"},
				"subject":          "Hi",
				"send_immediately": true,
			},
			mock: &MockEmailService{
				DraftID: "d3",
				SendErr: &jmap.Error{Op: "EmailSubmission/set", Type: "forbiddenFrom", Err: errString("d3 rejected: forbiddenFrom")},
			},
			contains: []string{
				"**Email ID:** d3",
				"❌ **Error sending email:** EmailSubmission/set: d3 rejected: forbiddenFrom",
				"The draft has been saved and can be sent manually.",
			},
		},
		{
			name:    "no content",
			args:    map[string]interface{}{"to": []interface{}{"bob@example.com"}},
			mock:    &MockEmailService{},
			wantErr: "Error: At least one of subject, text_body, or html_body is required",
		},
		{
			name:    "no recipients",
			args:    map[string]interface{}{"subject": "Hi"},
			mock:    &MockEmailService{},
			wantErr: "Error: at least one 'to' address is required",
		},
		{
			name:    "empty recipient array",
			args:    map[string]interface{}{"subject": "Hi", "to": []interface{}{}},
			mock:    &MockEmailService{},
			wantErr: "Error: at least one 'to' address is required",
		},
		{
			name:    "invalid recipient",
			args:    map[string]interface{}{"subject": "Hi", "to": []interface{}{"not-an-address"}},
			mock:    &MockEmailService{},
			wantErr: "Error: invalid to email address 'not-an-address'",
		},
		{
			name:    "invalid recipient type",
			args:    map[string]interface{}{"subject": "Hi", "to": []interface{}{float64(42)}},
			mock:    &MockEmailService{},
			wantErr: "Error: invalid to address type: float64",
		},
		{
			name:    "subject too long",
			args:    map[string]interface{}{"subject": strings.Repeat("s", 999), "to": "bob@example.com"},
			mock:    &MockEmailService{},
			wantErr: "Error: subject exceeds maximum length of 998 characters",
		},
		{
			name:    "create fails",
			args:    map[string]interface{}{"subject": "Hi", "to": "bob@example.com"},
			mock:    newJMAPErrMock("Email/set", "invalidProperties"),
			wantErr: "JMAP error: Email/set: invalidProperties",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := SendDraftHandler(tt.mock)
			result, err := handler(context.Background(), req(tt.args))
			if err != nil {
				t.Fatalf("unexpected Go error: %v", err)
			}
			if tt.wantErr != "" {
				got := resultErrText(t, result)
				if !strings.HasPrefix(got, tt.wantErr) {
					t.Errorf("error = %q, want prefix %q", got, tt.wantErr)
				}
				if tt.mock.LastMethod == "SendDraft" {
					t.Error("SendDraft should not be called on failure")
				}
				return
			}
			text := resultText(t, result)
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("output missing %q:\n%s", want, text)
				}
			}
			if tt.checkMock != nil {
				tt.checkMock(t, tt.mock)
			}
		})
	}
}

func TestSendDraftHandlerStructured(t *testing.T) {
	mock := &MockEmailService{DraftID: "d9", SubmissionID: "s9"}
	handler := SendDraftHandler(mock)
	result, err := handler(context.Background(), req(map[string]interface{}{
		"to":               "bob@example.com",
		"subject":          "Hi",
		"send_immediately": true,
	}))
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	data := resultJSON(t, result)
	if data["email_id"] != "d9" {
		t.Errorf("email_id = %v, want d9", data["email_id"])
	}
	if data["sent"] != true {
		t.Errorf("sent = %v, want true", data["sent"])
	}
	if data["submission_id"] != "s9" {
		t.Errorf("submission_id = %v, want s9", data["submission_id"])
	}
}

// --- MarkRead ---

func TestMarkReadHandler(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		mock     *MockEmailService
		wantErr  string
		wantSeen bool
		wantText string
	}{
		{
			name:     "default marks read",
			args:     map[string]interface{}{"email_id": "e1"},
			mock:     &MockEmailService{},
			wantSeen: true,
			wantText: "Email e1 marked as read.",
		},
		{
			name:     "mark unread",
			args:     map[string]interface{}{"email_id": "e1", "read": false},
			mock:     &MockEmailService{},
			wantSeen: false,
			wantText: "Email e1 marked as unread.",
		},
		{
			name:    "missing email_id",
			args:    map[string]interface{}{},
			mock:    &MockEmailService{},
			wantErr: "Error: email_id parameter is required",
		},
		{
			name:    "backend error",
			args:    map[string]interface{}{"email_id": "e1"},
			mock:    newJMAPErrMock("Email/set", "notFound"),
			wantErr: "JMAP error: Email/set: notFound",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := MarkReadHandler(tt.mock)
			result, err := handler(context.Background(), req(tt.args))
			if err != nil {
				t.Fatalf("unexpected Go error: %v", err)
			}
			if tt.wantErr != "" {
				if got := resultErrText(t, result); got != tt.wantErr {
					t.Errorf("error = %q, want %q", got, tt.wantErr)
				}
				return
			}
			if got := resultText(t, result); got != tt.wantText {
				t.Errorf("text = %q, want %q", got, tt.wantText)
			}
			if tt.mock.LastSeen != tt.wantSeen {
				t.Errorf("seen = %v, want %v", tt.mock.LastSeen, tt.wantSeen)
			}
			if tt.mock.LastEmailID != "e1" {
				t.Errorf("email id = %q, want e1", tt.mock.LastEmailID)
			}
		})
	}
}

// --- ListIdentities ---

func TestListIdentitiesHandler(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		mock := &MockEmailService{Identities: []jmap.Identity{
			{ID: "i1", Name: "Alice", Email: "alice@example.com"},
			{ID: "i2", Email: "noreply@example.com"},
		}}
		result, err := ListIdentitiesHandler(mock)(context.Background(), req(nil))
		if err != nil {
			t.Fatalf("unexpected Go error: %v", err)
		}
		text := resultText(t, result)
		for _, want := range []string{
			"**Alice** <alice@example.com> (ID: i1)",
			"**(unnamed)** <noreply@example.com> (ID: i2)",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("output missing %q:\n%s", want, text)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		result, _ := ListIdentitiesHandler(&MockEmailService{})(context.Background(), req(nil))
		if !strings.Contains(resultText(t, result), "No sender identities found.") {
			t.Error("expected empty notice")
		}
	})

	t.Run("error", func(t *testing.T) {
		result, _ := ListIdentitiesHandler(newErrMock("timeout"))(context.Background(), req(nil))
		if got := resultErrText(t, result); got != "Unexpected error listing identities: timeout" {
			t.Errorf("error = %q", got)
		}
	})
}

type errString string

func (e errString) Error() string { return string(e) }
