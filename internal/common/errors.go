package common

import "errors"

// Business logic errors. The four categories drive both HTTP mapping
// and optimistic-state handling: validation and permission errors are
// terminal, conflicts are absorbed as "already in desired state", and
// transient errors require rollback of any optimistic mutation.
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Category errors
	ErrValidation = errors.New("invalid input")
	ErrPermission = errors.New("permission denied")
	ErrConflict   = errors.New("conflict with existing state")
	ErrTransient  = errors.New("store temporarily unavailable")

	// Conversation/message errors
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotParticipant       = errors.New("not a participant of this conversation")
	ErrEmptyMessage         = errors.New("message needs content or media")
	ErrContentTooLong       = errors.New("content exceeds maximum length")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")

	// Relationship errors
	ErrSelfTarget   = errors.New("action cannot target yourself")
	ErrUserNotFound = errors.New("user not found")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// IsValidation reports whether err belongs to the validation category
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrContentTooLong) ||
		errors.Is(err, ErrSelfTarget)
}

// IsPermission reports whether err belongs to the permission category
func IsPermission(err error) bool {
	return errors.Is(err, ErrPermission) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotParticipant)
}

// IsConflict reports whether err belongs to the conflict category.
// Conflicts mean "already in desired state" and are absorbed by
// idempotent handling, never surfaced as user-facing failures.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
