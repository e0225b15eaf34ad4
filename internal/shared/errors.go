package shared

import "errors"

var (
	// ErrNotFound indicates the requested account does not exist or is soft-deleted.
	ErrNotFound = errors.New("account not found")
	// ErrInvalidCredentials indicates login failure. The same error covers
	// unknown identifiers and wrong passwords so callers cannot probe which
	// usernames or emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled indicates the credentials were correct but the account
	// has been administratively disabled.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrUsernameTaken indicates a registration conflict on the username.
	ErrUsernameTaken = errors.New("username exists")
	// ErrEmailTaken indicates a registration conflict on the email.
	ErrEmailTaken = errors.New("email exists")
	// ErrValidation indicates malformed or missing caller input.
	ErrValidation = errors.New("validation failed")
	// ErrPasswordReuse indicates the new password equals the current one.
	ErrPasswordReuse = errors.New("new password must differ from the old password")
	// ErrVersionConflict indicates a stale optimistic-lock version; the write
	// raced with another mutation of the same account.
	ErrVersionConflict = errors.New("account was modified concurrently")
)
