package jmap

import (
	"errors"
	"fmt"
)

var (
	// ErrMailboxNotFound is returned when no mailbox matches a name or role.
	ErrMailboxNotFound = errors.New("mailbox not found")
	// ErrEmailNotFound is returned when Email/get reports the id as not found.
	ErrEmailNotFound = errors.New("email not found")
	// ErrNoIdentity is returned when the account has no sender identity.
	ErrNoIdentity = errors.New("no sender identity available")
	// ErrNoAccount is returned when the session has no primary mail account.
	ErrNoAccount = errors.New("no primary mail account")
)

// Error wraps a failure of one JMAP operation.
// Type carries the JMAP error type (method-level or SetError) when the server reported one.
type Error struct {
	Op   string
	Type string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorType returns the JMAP error type carried by err, or "".
func ErrorType(err error) string {
	var je *Error
	if errors.As(err, &je) {
		return je.Type
	}
	return ""
}

func setError(op, id, typ string) error {
	return &Error{Op: op, Type: typ, Err: fmt.Errorf("%s rejected: %s", id, typ)}
}
