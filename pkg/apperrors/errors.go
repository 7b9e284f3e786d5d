// Package apperrors defines the error taxonomy shared by the data access
// layer, the tool dispatcher and the agent loop. Typed errors unwrap to
// category sentinels so callers can branch with errors.Is while messages
// stay specific enough to surface to an end user.
package apperrors

import (
	"errors"
	"fmt"
)

// Category sentinels. Typed errors below unwrap to one of these.
var (
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrToolNotRecognized = errors.New("tool not recognized")
	ErrConflict          = errors.New("conflict")
)

// PermissionDeniedError is returned when the acting user's role is
// insufficient for an action, or when no user is authenticated at all.
// The message is user-facing and names the action and the minimum role.
type PermissionDeniedError struct {
	Action   string // the attempted action tag, e.g. "delete"
	Role     string // the acting user's role, empty if unauthenticated
	Required string // human-readable minimum role, e.g. "admin only"
}

func (e *PermissionDeniedError) Error() string {
	if e.Role == "" {
		return "you must be logged in to perform this action"
	}
	return fmt.Sprintf("your role '%s' does not have permission to %s. Required: %s", e.Role, e.Action, e.Required)
}

func (e *PermissionDeniedError) Unwrap() error { return ErrPermissionDenied }

// NotFoundError is returned when a referenced id does not exist.
type NotFoundError struct {
	Resource string // e.g. "use case", "company"
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidArgumentError is returned for malformed input: empty title,
// unrecognized status value, bad email. The reason includes the expected
// shape or valid set so the model (or user) can self-correct.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string { return e.Reason }

func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

// ToolNotRecognizedError is returned by the dispatcher when the model
// requests a tool name outside the catalog.
type ToolNotRecognizedError struct {
	Tool string
}

func (e *ToolNotRecognizedError) Error() string {
	return fmt.Sprintf("Unknown tool: %s", e.Tool)
}

func (e *ToolNotRecognizedError) Unwrap() error { return ErrToolNotRecognized }

// Invalidf builds an InvalidArgumentError from a format string.
func Invalidf(format string, args ...any) *InvalidArgumentError {
	return &InvalidArgumentError{Reason: fmt.Sprintf(format, args...)}
}
