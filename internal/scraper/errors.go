package scraper

import (
	"errors"
	"fmt"
)

// ErrorKind classifies terminal scraper failures. Callers branch on the
// kind rather than matching message text: a captcha block warrants manual
// intervention, rejected credentials need fixing, a timeout may resolve on
// retry, a missing target needs a different identifier.
type ErrorKind string

const (
	KindBrowserLaunch       ErrorKind = "browser_launch"
	KindNavigation          ErrorKind = "navigation"
	KindFormNotFound        ErrorKind = "form_not_found"
	KindCaptchaBlocked      ErrorKind = "captcha_blocked"
	KindCredentialsRejected ErrorKind = "credentials_rejected"
	KindSessionTimeout      ErrorKind = "session_timeout"
	KindRateLimited         ErrorKind = "rate_limited"
	KindExtraction          ErrorKind = "extraction"
	KindMalformedState      ErrorKind = "malformed_state"
	KindTargetNotFound      ErrorKind = "target_not_found"
)

// Error is a classified scraper failure.
type Error struct {
	Kind    ErrorKind
	Message string
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

// NewError creates a classified error without a cause.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates a classified error wrapping an underlying cause.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of a classified error, or empty string for
// unclassified errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
