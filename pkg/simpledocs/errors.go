package simpledocs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport boundary. Kinds map 1:1 to
// HTTP status codes there; nothing in the core inspects error strings.
type Kind int

// Error kinds.
const (
	// KindInternal is any unclassified fault from a collaborator.
	KindInternal Kind = iota
	// KindUnauthorized means no valid identity could be resolved.
	KindUnauthorized
	// KindForbidden means the identity resolved but policy rejected the action.
	KindForbidden
	// KindNotFound means the resource is absent, or soft-deleted and not
	// explicitly requested.
	KindNotFound
	// KindBadRequest means the input failed validation or a semantically
	// invalid transition was requested.
	KindBadRequest
	// KindConflict is reserved for optimistic-concurrency violations. Not
	// currently raised; updates are last-writer-wins.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a typed error carrying its boundary classification. Details is
// only populated for validation failures and must never carry internal
// identifiers the caller did not supply.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a typed error with the given kind and message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewValidationError builds a BadRequest error carrying field details.
func NewValidationError(message string, details map[string]any) *Error {
	return &Error{Kind: KindBadRequest, Message: message, Details: details}
}

// WrapError attaches a kind and message to an underlying error.
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err. Sentinel repository errors classify
// as NotFound; anything untyped collapses to Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrDocumentNotFound) || errors.Is(err, ErrUserNotFound) {
		return KindNotFound
	}
	return KindInternal
}

// Sentinel errors shared by repository implementations.
var (
	// ErrDocumentNotFound indicates a document was not found.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrUserNotFound indicates a directory user was not found.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCursor indicates a pagination cursor could not be decoded.
	ErrInvalidCursor = errors.New("invalid pagination cursor")
)

// DocumentError represents a failure of a document repository operation.
type DocumentError struct {
	DocumentID string
	Op         string
	Err        error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document operation %s failed for document %s: %v", e.Op, e.DocumentID, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// AuditError represents a failure to append or query the audit trail.
type AuditError struct {
	Action AuditAction
	Op     string
	Err    error
}

func (e *AuditError) Error() string {
	return fmt.Sprintf("audit operation %s failed for action %s: %v", e.Op, e.Action, e.Err)
}

func (e *AuditError) Unwrap() error {
	return e.Err
}
