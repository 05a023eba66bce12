package auth

import (
	"errors"
	"fmt"
)

// Kind identifies an authentication failure. Every kind maps to HTTP 401.
type Kind string

const (
	KindMissingToken          Kind = "missing_token"
	KindMalformedHeader       Kind = "malformed_header"
	KindInvalidSession        Kind = "invalid_session"
	KindInvalidSessionData    Kind = "invalid_session_data"
	KindSessionExpired        Kind = "session_expired"
	KindInvalidTokenType      Kind = "invalid_token_type"
	KindUserIDNotFound        Kind = "user_id_not_found"
	KindInvalidUserIDFormat   Kind = "invalid_user_id_format"
	KindTenantIDNotFound      Kind = "tenant_id_not_found"
	KindInvalidTenantIDFormat Kind = "invalid_tenant_id_format"
)

// Error is an authentication failure with a client-facing message
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrSessionExpired) works on wrapped copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// wrap returns a copy of base carrying the underlying cause
func wrap(base *Error, err error) *Error {
	return &Error{Kind: base.Kind, Message: base.Message, Err: err}
}

var (
	ErrMissingToken          = &Error{Kind: KindMissingToken, Message: "Missing token"}
	ErrMalformedHeader       = &Error{Kind: KindMalformedHeader, Message: "Invalid authorization header format"}
	ErrInvalidSession        = &Error{Kind: KindInvalidSession, Message: "Invalid Session"}
	ErrInvalidSessionData    = &Error{Kind: KindInvalidSessionData, Message: "Invalid Session Data"}
	ErrSessionExpired        = &Error{Kind: KindSessionExpired, Message: "Session Expired"}
	ErrInvalidTokenType      = &Error{Kind: KindInvalidTokenType, Message: "Invalid token type"}
	ErrUserIDNotFound        = &Error{Kind: KindUserIDNotFound, Message: "User ID not found in session"}
	ErrInvalidUserIDFormat   = &Error{Kind: KindInvalidUserIDFormat, Message: "Invalid User ID format in session"}
	ErrTenantIDNotFound      = &Error{Kind: KindTenantIDNotFound, Message: "Tenant ID not found in session"}
	ErrInvalidTenantIDFormat = &Error{Kind: KindInvalidTenantIDFormat, Message: "Invalid Tenant ID format in session"}
)

// AsError extracts an authentication failure from err
func AsError(err error) (*Error, bool) {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
