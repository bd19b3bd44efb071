package domain

import "errors"

var (
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUsernameTooLong = errors.New("username too long")

	// ErrDuplicateManager: a manager already exists for this session's lifetime.
	ErrDuplicateManager = errors.New("manager already registered")
	// ErrDuplicateID: the id is already pending or active.
	ErrDuplicateID = errors.New("user id already taken")
	// ErrUnknownPendingID: the id is not currently pending (already decided,
	// already left, or never requested).
	ErrUnknownPendingID = errors.New("no such pending user")
	// ErrUnauthorized: a manager-only operation invoked by a non-manager.
	ErrUnauthorized = errors.New("operation requires the manager")
	// ErrNotActive: the caller is not an active participant.
	ErrNotActive = errors.New("user is not an active participant")
	// ErrSessionClosed: the session has been closed; no further operations.
	ErrSessionClosed = errors.New("session is closed")
	// ErrInvalidPayload: the payload would corrupt the line-oriented snapshot.
	ErrInvalidPayload = errors.New("payload must not contain newline")
)
