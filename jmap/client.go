package jmap

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"git.sr.ht/~rockorager/go-jmap"
	"git.sr.ht/~rockorager/go-jmap/mail"
	"git.sr.ht/~rockorager/go-jmap/mail/email"
	"git.sr.ht/~rockorager/go-jmap/mail/emailsubmission"
	"git.sr.ht/~rockorager/go-jmap/mail/identity"
	"git.sr.ht/~rockorager/go-jmap/mail/mailbox"
)

const (
	// DefaultSearchLimit is used when SearchFilters.Limit is zero.
	DefaultSearchLimit = 50
	// DefaultMaxBodyBytes caps each body value fetched by Email/get.
	DefaultMaxBodyBytes = 1024 * 1024

	keywordSeen    = "$seen"
	keywordDraft   = "$draft"
	keywordFlagged = "$flagged"
)

var summaryProperties = []string{
	"id", "threadId", "mailboxIds", "keywords", "from", "to", "subject",
	"receivedAt", "size", "preview", "hasAttachment",
}

var fullProperties = []string{
	"id", "threadId", "mailboxIds", "keywords", "from", "to", "cc", "bcc",
	"replyTo", "subject", "receivedAt", "sentAt", "size", "preview",
	"hasAttachment", "bodyStructure", "bodyValues", "textBody", "htmlBody",
	"attachments",
}

// Doer executes a batch of JMAP method calls. *jmap.Client satisfies this.
type Doer interface {
	Do(req *jmap.Request) (*jmap.Response, error)
}

// Client wraps a go-jmap client bound to the primary mail account
type Client struct {
	doer      Doer
	accountID jmap.ID
}

// NewClient creates a client around an already authenticated Doer.
func NewClient(doer Doer, accountID string) *Client {
	return &Client{doer: doer, accountID: jmap.ID(accountID)}
}

// Connect fetches the JMAP session with a bearer token and resolves the primary mail account.
func Connect(ctx context.Context, sessionURL, token string) (*Client, error) {
	if token == "" {
		return nil, &Error{Op: "connect", Err: fmt.Errorf("no auth token configured")}
	}

	c := (&jmap.Client{SessionEndpoint: sessionURL}).WithAccessToken(token)

	done := make(chan error, 1)
	go func() {
		done <- c.Authenticate()
	}()

	select {
	case <-ctx.Done():
		return nil, &Error{Op: "connect", Err: ctx.Err()}
	case err := <-done:
		if err != nil {
			return nil, &Error{Op: "connect", Err: fmt.Errorf("failed to fetch session from %s: %w", sessionURL, err)}
		}
	}

	accountID := c.Session.PrimaryAccounts[mail.URI]
	if accountID == "" {
		return nil, &Error{Op: "connect", Err: ErrNoAccount}
	}

	slog.Debug("jmap session established", "session_url", sessionURL, "account_id", accountID)
	return &Client{doer: c, accountID: accountID}, nil
}

// AccountID returns the primary mail account id.
func (c *Client) AccountID() string {
	return string(c.accountID)
}

// do sends the request and returns its responses. The blocking call is abandoned when ctx ends.
func (c *Client) do(ctx context.Context, op string, req *jmap.Request) ([]*jmap.Invocation, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: op, Err: err}
	}

	type result struct {
		resp *jmap.Response
		err  error
	}
	done := make(chan result, 1)
	start := time.Now()

	go func() {
		resp, err := c.doer.Do(req)
		done <- result{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, &Error{Op: op, Err: ctx.Err()}
	case r := <-done:
		slog.Debug("jmap request", "op", op, "calls", len(req.Calls), "duration_ms", time.Since(start).Milliseconds(), "error", r.err)
		if r.err != nil {
			return nil, &Error{Op: op, Err: r.err}
		}
		if r.resp == nil || len(r.resp.Responses) == 0 {
			return nil, &Error{Op: op, Err: fmt.Errorf("empty response")}
		}
		return r.resp.Responses, nil
	}
}

// response finds the invocation answering callID and asserts its argument type.
func response[T any](op string, responses []*jmap.Invocation, callID string) (T, error) {
	var zero T
	for _, inv := range responses {
		if inv.CallID != callID {
			continue
		}
		switch args := inv.Args.(type) {
		case *jmap.MethodError:
			return zero, &Error{Op: op, Type: args.Type, Err: args}
		case T:
			return args, nil
		default:
			return zero, &Error{Op: op, Err: fmt.Errorf("unexpected response type: %T", args)}
		}
	}
	return zero, &Error{Op: op, Err: fmt.Errorf("missing response for call %s", callID)}
}

// GetMailboxes lists all mailboxes ordered by sort order, then name
func (c *Client) GetMailboxes(ctx context.Context) ([]Mailbox, error) {
	req := &jmap.Request{}
	callID := req.Invoke(&mailbox.Get{Account: c.accountID})

	responses, err := c.do(ctx, "Mailbox/get", req)
	if err != nil {
		return nil, err
	}
	resp, err := response[*mailbox.GetResponse]("Mailbox/get", responses, callID)
	if err != nil {
		return nil, err
	}

	return convertMailboxes(resp.List), nil
}

// FindMailbox returns the first mailbox whose name or role matches nameOrRole, ignoring case.
func (c *Client) FindMailbox(ctx context.Context, nameOrRole string) (*Mailbox, error) {
	mailboxes, err := c.GetMailboxes(ctx)
	if err != nil {
		return nil, err
	}
	if mb := matchMailbox(mailboxes, nameOrRole); mb != nil {
		return mb, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrMailboxNotFound, nameOrRole)
}

func matchMailbox(mailboxes []Mailbox, nameOrRole string) *Mailbox {
	for i := range mailboxes {
		mb := &mailboxes[i]
		if strings.EqualFold(mb.Name, nameOrRole) || (mb.Role != "" && strings.EqualFold(mb.Role, nameOrRole)) {
			return mb
		}
	}
	return nil
}

// SearchEmails runs Email/query and fetches the matching emails in the same request
func (c *Client) SearchEmails(ctx context.Context, filters SearchFilters) (*SearchResult, error) {
	filter := &email.FilterCondition{
		InMailbox: jmap.ID(filters.MailboxID),
		Text:      filters.Text,
		From:      filters.From,
		To:        filters.To,
		Subject:   filters.Subject,
		After:     filters.After,
		Before:    filters.Before,
	}
	if filters.UnreadOnly {
		filter.NotKeyword = keywordSeen
	}
	if filters.HasAttachment {
		filter.HasAttachment = true
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	req := &jmap.Request{}
	queryID := req.Invoke(&email.Query{
		Account:        c.accountID,
		Filter:         filter,
		Sort:           []*email.SortComparator{{Property: "receivedAt", IsAscending: false}},
		Limit:          uint64(limit),
		CalculateTotal: true,
	})
	getID := req.Invoke(&email.Get{
		Account: c.accountID,
		ReferenceIDs: &jmap.ResultReference{
			ResultOf: queryID,
			Name:     "Email/query",
			Path:     "/ids",
		},
		Properties: summaryProperties,
	})

	responses, err := c.do(ctx, "Email/query", req)
	if err != nil {
		return nil, err
	}

	query, err := response[*email.QueryResponse]("Email/query", responses, queryID)
	if err != nil {
		return nil, err
	}
	got, err := response[*email.GetResponse]("Email/get", responses, getID)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		IDs:    make([]string, 0, len(query.IDs)),
		Total:  int(query.Total),
		Limit:  limit,
		Emails: make([]Email, 0, len(got.List)),
	}
	for _, id := range query.IDs {
		result.IDs = append(result.IDs, string(id))
	}
	for _, e := range got.List {
		result.Emails = append(result.Emails, convertEmail(e))
	}
	return result, nil
}

// GetEmails fetches emails by id. Ids the server does not know are skipped.
func (c *Client) GetEmails(ctx context.Context, ids []string, opts GetOptions) ([]Email, error) {
	if len(ids) == 0 {
		return []Email{}, nil
	}

	get := &email.Get{
		Account:    c.accountID,
		IDs:        toIDs(ids),
		Properties: summaryProperties,
	}
	if opts.Full {
		maxBytes := opts.MaxBodyBytes
		if maxBytes <= 0 {
			maxBytes = DefaultMaxBodyBytes
		}
		get.Properties = fullProperties
		get.FetchTextBodyValues = true
		get.FetchHTMLBodyValues = true
		get.MaxBodyValueBytes = uint64(maxBytes)
	}

	req := &jmap.Request{}
	callID := req.Invoke(get)

	responses, err := c.do(ctx, "Email/get", req)
	if err != nil {
		return nil, err
	}
	resp, err := response[*email.GetResponse]("Email/get", responses, callID)
	if err != nil {
		return nil, err
	}

	emails := make([]Email, 0, len(resp.List))
	for _, e := range resp.List {
		emails = append(emails, convertEmail(e))
	}
	return emails, nil
}

// GetEmail fetches a single email with its body.
func (c *Client) GetEmail(ctx context.Context, id string, opts GetOptions) (*Email, error) {
	opts.Full = true
	emails, err := c.GetEmails(ctx, []string{id}, opts)
	if err != nil {
		return nil, err
	}
	if len(emails) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmailNotFound, id)
	}
	return &emails[0], nil
}

// GetIdentities lists the sender identities of the account
func (c *Client) GetIdentities(ctx context.Context) ([]Identity, error) {
	req := &jmap.Request{}
	callID := req.Invoke(&identity.Get{Account: c.accountID})

	responses, err := c.do(ctx, "Identity/get", req)
	if err != nil {
		return nil, err
	}
	resp, err := response[*identity.GetResponse]("Identity/get", responses, callID)
	if err != nil {
		return nil, err
	}

	identities := make([]Identity, 0, len(resp.List))
	for _, id := range resp.List {
		identities = append(identities, Identity{ID: string(id.ID), Name: id.Name, Email: id.Email})
	}
	return identities, nil
}

// CreateDraft stores a new message in the Drafts mailbox and returns its id.
// When d.From is nil the first sender identity is used.
func (c *Client) CreateDraft(ctx context.Context, d Draft) (string, error) {
	// Discover Drafts mailbox and sender identity in one round trip
	req := &jmap.Request{}
	mailboxCall := req.Invoke(&mailbox.Get{Account: c.accountID})
	identityCall := req.Invoke(&identity.Get{Account: c.accountID})

	responses, err := c.do(ctx, "Mailbox/get", req)
	if err != nil {
		return "", err
	}
	mailboxes, err := response[*mailbox.GetResponse]("Mailbox/get", responses, mailboxCall)
	if err != nil {
		return "", err
	}
	identities, err := response[*identity.GetResponse]("Identity/get", responses, identityCall)
	if err != nil {
		return "", err
	}

	drafts := findDrafts(convertMailboxes(mailboxes.List))
	if drafts == nil {
		return "", &Error{Op: "Email/set", Err: fmt.Errorf("%w: Drafts", ErrMailboxNotFound)}
	}

	from := d.From
	if from == nil {
		if len(identities.List) == 0 {
			return "", &Error{Op: "Email/set", Err: ErrNoIdentity}
		}
		first := identities.List[0]
		from = &Address{Name: first.Name, Email: first.Email}
	}

	msg := &email.Email{
		MailboxIDs: map[jmap.ID]bool{jmap.ID(drafts.ID): true},
		Keywords:   map[string]bool{keywordDraft: true, keywordSeen: true},
		From:       toMailAddresses([]Address{*from}),
		To:         toMailAddresses(d.To),
		CC:         toMailAddresses(d.CC),
		BCC:        toMailAddresses(d.BCC),
		Subject:    d.Subject,
		BodyValues: map[string]*email.BodyValue{},
	}
	if d.TextBody != "" || d.HTMLBody == "" {
		msg.BodyValues["text"] = &email.BodyValue{Value: d.TextBody}
		msg.TextBody = []*email.BodyPart{{PartID: "text", Type: "text/plain"}}
	}
	if d.HTMLBody != "" {
		msg.BodyValues["html"] = &email.BodyValue{Value: d.HTMLBody}
		msg.HTMLBody = []*email.BodyPart{{PartID: "html", Type: "text/html"}}
	}

	setReq := &jmap.Request{}
	setCall := setReq.Invoke(&email.Set{
		Account: c.accountID,
		Create:  map[jmap.ID]*email.Email{"draft": msg},
	})

	responses, err = c.do(ctx, "Email/set", setReq)
	if err != nil {
		return "", err
	}
	resp, err := response[*email.SetResponse]("Email/set", responses, setCall)
	if err != nil {
		return "", err
	}
	if se, ok := resp.NotCreated["draft"]; ok {
		return "", setError("Email/set", "draft", se.Type)
	}
	created, ok := resp.Created["draft"]
	if !ok || created == nil {
		return "", &Error{Op: "Email/set", Err: fmt.Errorf("server did not report the created draft")}
	}

	slog.Debug("draft created", "email_id", created.ID, "mailbox_id", drafts.ID)
	return string(created.ID), nil
}

// SendDraft submits a stored draft to all of its recipients and files it in Sent.
// It returns the EmailSubmission id.
func (c *Client) SendDraft(ctx context.Context, emailID string) (string, error) {
	req := &jmap.Request{}
	emailCall := req.Invoke(&email.Get{
		Account:    c.accountID,
		IDs:        []jmap.ID{jmap.ID(emailID)},
		Properties: []string{"id", "from", "to", "cc", "bcc", "mailboxIds", "keywords"},
	})
	mailboxCall := req.Invoke(&mailbox.Get{Account: c.accountID})
	identityCall := req.Invoke(&identity.Get{Account: c.accountID})

	responses, err := c.do(ctx, "Email/get", req)
	if err != nil {
		return "", err
	}
	got, err := response[*email.GetResponse]("Email/get", responses, emailCall)
	if err != nil {
		return "", err
	}
	mailboxes, err := response[*mailbox.GetResponse]("Mailbox/get", responses, mailboxCall)
	if err != nil {
		return "", err
	}
	identities, err := response[*identity.GetResponse]("Identity/get", responses, identityCall)
	if err != nil {
		return "", err
	}

	if len(got.List) == 0 {
		return "", &Error{Op: "EmailSubmission/set", Err: fmt.Errorf("%w: %s", ErrEmailNotFound, emailID)}
	}
	draft := convertEmail(got.List[0])

	rcpt := recipients(draft)
	if len(rcpt) == 0 {
		return "", &Error{Op: "EmailSubmission/set", Err: fmt.Errorf("draft %s has no recipients", emailID)}
	}

	ident := pickIdentity(identities.List, draft.From)
	if ident == nil {
		return "", &Error{Op: "EmailSubmission/set", Err: ErrNoIdentity}
	}

	envelope := &emailsubmission.Envelope{
		MailFrom: &emailsubmission.Address{Email: ident.Email},
	}
	for _, addr := range rcpt {
		envelope.RcptTo = append(envelope.RcptTo, &emailsubmission.Address{Email: addr})
	}

	patch := jmap.Patch{"keywords/" + keywordDraft: nil}
	all := convertMailboxes(mailboxes.List)
	if drafts := findDrafts(all); drafts != nil {
		patch["mailboxIds/"+drafts.ID] = nil
	}
	if sent := findRole(all, string(mailbox.RoleSent)); sent != nil {
		patch["mailboxIds/"+sent.ID] = true
	}

	submitReq := &jmap.Request{}
	submitCall := submitReq.Invoke(&emailsubmission.Set{
		Account: c.accountID,
		Create: map[jmap.ID]*emailsubmission.EmailSubmission{
			"send": {
				IdentityID: ident.ID,
				EmailID:    jmap.ID(emailID),
				Envelope:   envelope,
			},
		},
		OnSuccessUpdateEmail: map[jmap.ID]jmap.Patch{"#send": patch},
	})

	responses, err = c.do(ctx, "EmailSubmission/set", submitReq)
	if err != nil {
		return "", err
	}
	resp, err := response[*emailsubmission.SetResponse]("EmailSubmission/set", responses, submitCall)
	if err != nil {
		return "", err
	}
	if se, ok := resp.NotCreated["send"]; ok {
		return "", setError("EmailSubmission/set", emailID, se.Type)
	}

	var submissionID string
	if created, ok := resp.Created["send"]; ok && created != nil {
		submissionID = string(created.ID)
	}
	slog.Debug("email submitted", "email_id", emailID, "identity", ident.Email, "recipients", len(rcpt))
	return submissionID, nil
}

// SetSeen adds or removes the $seen keyword on an email.
func (c *Client) SetSeen(ctx context.Context, emailID string, seen bool) error {
	var value interface{}
	if seen {
		value = true
	}

	req := &jmap.Request{}
	callID := req.Invoke(&email.Set{
		Account: c.accountID,
		Update: map[jmap.ID]jmap.Patch{
			jmap.ID(emailID): {"keywords/" + keywordSeen: value},
		},
	})

	responses, err := c.do(ctx, "Email/set", req)
	if err != nil {
		return err
	}
	resp, err := response[*email.SetResponse]("Email/set", responses, callID)
	if err != nil {
		return err
	}
	if se, ok := resp.NotUpdated[jmap.ID(emailID)]; ok {
		return setError("Email/set", emailID, se.Type)
	}
	return nil
}

func findDrafts(mailboxes []Mailbox) *Mailbox {
	if mb := findRole(mailboxes, string(mailbox.RoleDrafts)); mb != nil {
		return mb
	}
	for i := range mailboxes {
		if strings.EqualFold(mailboxes[i].Name, "Drafts") {
			return &mailboxes[i]
		}
	}
	return nil
}

func findRole(mailboxes []Mailbox, role string) *Mailbox {
	for i := range mailboxes {
		if mailboxes[i].Role == role {
			return &mailboxes[i]
		}
	}
	return nil
}

// pickIdentity prefers the identity whose address matches the draft sender.
func pickIdentity(identities []*identity.Identity, from []Address) *identity.Identity {
	if len(identities) == 0 {
		return nil
	}
	for _, addr := range from {
		for _, id := range identities {
			if strings.EqualFold(id.Email, addr.Email) {
				return id
			}
		}
	}
	return identities[0]
}

// recipients collects unique To, CC and BCC addresses in order.
func recipients(e Email) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]Address{e.To, e.CC, e.BCC} {
		for _, a := range list {
			key := strings.ToLower(a.Email)
			if a.Email == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, a.Email)
		}
	}
	return out
}

func convertMailboxes(list []*mailbox.Mailbox) []Mailbox {
	mailboxes := make([]Mailbox, 0, len(list))
	for _, mb := range list {
		mailboxes = append(mailboxes, Mailbox{
			ID:           string(mb.ID),
			Name:         mb.Name,
			Role:         string(mb.Role),
			ParentID:     string(mb.ParentID),
			SortOrder:    uint64(mb.SortOrder),
			TotalEmails:  uint64(mb.TotalEmails),
			UnreadEmails: uint64(mb.UnreadEmails),
		})
	}
	slices.SortStableFunc(mailboxes, func(a, b Mailbox) int {
		if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return mailboxes
}

func convertEmail(e *email.Email) Email {
	out := Email{
		ID:            string(e.ID),
		ThreadID:      string(e.ThreadID),
		Subject:       e.Subject,
		From:          convertAddresses(e.From),
		To:            convertAddresses(e.To),
		CC:            convertAddresses(e.CC),
		BCC:           convertAddresses(e.BCC),
		ReplyTo:       convertAddresses(e.ReplyTo),
		ReceivedAt:    e.ReceivedAt,
		SentAt:        e.SentAt,
		Size:          uint64(e.Size),
		Preview:       e.Preview,
		Unread:        !e.Keywords[keywordSeen],
		Flagged:       e.Keywords[keywordFlagged],
		Draft:         e.Keywords[keywordDraft],
		HasAttachment: e.HasAttachment,
		TextBody:      bodyText(e.TextBody, e.BodyValues),
		HTMLBody:      bodyText(e.HTMLBody, e.BodyValues),
	}
	for id, in := range e.MailboxIDs {
		if in {
			out.MailboxIDs = append(out.MailboxIDs, string(id))
		}
	}
	slices.Sort(out.MailboxIDs)
	if e.BodyStructure != nil {
		bs := convertPart(e.BodyStructure)
		out.BodyStructure = &bs
	}
	for _, p := range e.Attachments {
		out.Attachments = append(out.Attachments, convertPart(p))
	}
	return out
}

func convertPart(p *email.BodyPart) BodyPart {
	part := BodyPart{
		PartID: p.PartID,
		BlobID: string(p.BlobID),
		Type:   p.Type,
		Name:   p.Name,
		Size:   uint64(p.Size),
	}
	for _, sub := range p.SubParts {
		part.SubParts = append(part.SubParts, convertPart(sub))
	}
	return part
}

// bodyText joins the decoded values of the given parts.
func bodyText(parts []*email.BodyPart, values map[string]*email.BodyValue) string {
	var chunks []string
	for _, p := range parts {
		if v, ok := values[p.PartID]; ok && v != nil {
			chunks = append(chunks, v.Value)
		}
	}
	return strings.Join(chunks, "\n")
}

func convertAddresses(list []*mail.Address) []Address {
	if len(list) == 0 {
		return nil
	}
	out := make([]Address, 0, len(list))
	for _, a := range list {
		if a == nil {
			continue
		}
		out = append(out, Address{Name: a.Name, Email: a.Email})
	}
	return out
}

func toMailAddresses(list []Address) []*mail.Address {
	if len(list) == 0 {
		return nil
	}
	out := make([]*mail.Address, len(list))
	for i, a := range list {
		out[i] = &mail.Address{Name: a.Name, Email: a.Email}
	}
	return out
}

func toIDs(ids []string) []jmap.ID {
	out := make([]jmap.ID, len(ids))
	for i, id := range ids {
		out[i] = jmap.ID(id)
	}
	return out
}
