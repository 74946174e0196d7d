package domain

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure classes the pipeline can report.
// Callers and tests branch on Kind, never on message content.
type Kind string

const (
	KindAuthorizationDenied Kind = "authorization_denied"
	KindCredentialMissing   Kind = "credential_missing"
	KindRefreshFailure      Kind = "refresh_failure"
	KindAuthExchange        Kind = "auth_exchange"
	KindResolutionFailure   Kind = "resolution_failure"
	KindUpstreamFetch       Kind = "upstream_fetch"
	KindCacheDegraded       Kind = "cache_degraded" // diagnosed internally, never surfaced
)

// Error carries a failure kind, a human-readable message and, when an
// upstream call failed, the response body as opaque diagnostic context.
type Error struct {
	Kind       Kind
	Msg        string
	Diagnostic string
}

func (e *Error) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Diagnostic)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is lets errors.Is match two domain errors by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func Errf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

func ErrWithBody(k Kind, msg, body string) *Error {
	return &Error{Kind: k, Msg: msg, Diagnostic: body}
}

// KindOf extracts the failure kind from err, or "" for non-domain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
