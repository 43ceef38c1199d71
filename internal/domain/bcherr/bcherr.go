// Package bcherr defines the transport-independent error taxonomy. It
// complements the sentinel errors already in the parent domain package
// (ErrNotFound, ErrConflict, ErrValidation) with the remaining kinds the
// HTTP adapter maps to status codes.
package bcherr

import "fmt"

// Kind is a stable error classification, independent of transport.
type Kind string

const (
	KindBadRequest       Kind = "bad_request"
	KindUnauthorized     Kind = "unauthorized"
	KindForbidden        Kind = "forbidden"
	KindNotFound         Kind = "not_found"
	KindConflict         Kind = "conflict"
	KindTooManyRequests  Kind = "too_many_requests"
	KindFailedDependency Kind = "failed_dependency"
	KindPaymentRequired  Kind = "payment_required"
	KindInternal         Kind = "internal"
)

// Error is a typed application error carrying a stable Kind and a
// human-readable message safe to return to clients. Internal details
// (stack traces, SQL) are never embedded in Message.
type Error struct {
	Kind    Kind
	Message string
	// Window names the rate-limit window that tripped, set only for
	// KindTooManyRequests.
	Window string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func newErr(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func BadRequest(msg string) *Error   { return newErr(KindBadRequest, msg) }
func Unauthorized(msg string) *Error { return newErr(KindUnauthorized, msg) }
func Forbidden(msg string) *Error    { return newErr(KindForbidden, msg) }
func NotFound(msg string) *Error     { return newErr(KindNotFound, msg) }
func Conflict(msg string) *Error     { return newErr(KindConflict, msg) }
func PaymentRequired(msg string) *Error { return newErr(KindPaymentRequired, msg) }

// TooManyRequests builds a rate-limit error naming the window that tripped.
func TooManyRequests(window string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: "rate limit exceeded", Window: window}
}

// FailedDependency wraps an external-service failure (SMTP, OAuth, indexer).
func FailedDependency(msg string, cause error) *Error {
	return &Error{Kind: KindFailedDependency, Message: msg, cause: cause}
}

// Internal wraps an unexpected invariant violation. The cause is logged
// with a correlation id by the caller but never rendered to the client.
func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}

// Is allows errors.Is(err, bcherr.NotFound("")) style matching on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
