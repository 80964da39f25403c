// Package errors wraps cockroachdb/errors and defines the closed set of
// error kinds a page download can fail with. Kinds are attached only at the
// transport and filesystem boundary; callers match on Kind, never on message
// text.
package errors

import (
	"context"
	"fmt"
	"net"
	"syscall"

	cerrors "github.com/cockroachdb/errors"
)

// Kind - Classification of a page download failure
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidURL
	KindDNS
	KindConnRefused
	KindTimeout
	KindHTTPStatus
	KindDirNotFound
	KindNotADirectory
	KindDirNotWritable
)

// String returns the machine-readable code for the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindDNS:
		return "dns_error"
	case KindConnRefused:
		return "connection_refused"
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	case KindDirNotFound:
		return "directory_not_found"
	case KindNotADirectory:
		return "not_a_directory"
	case KindDirNotWritable:
		return "directory_not_writable"
	default:
		return "unknown"
	}
}

// Error - A classified failure. Satisfies the error interface and unwraps to
// its cause so errors.Is/As keep working across the chain.
type Error struct {
	kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Kind returns the classification of this error.
func (e *Error) Kind() Kind {
	return e.kind
}

// New creates a classified error with no cause.
func New(kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// WithKind attaches a kind and context message to err. Returns nil if err is
// nil.
func WithKind(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, msg: msg, cause: err}
}

// KindOf extracts the kind from an error chain. Unclassified errors report
// KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if cerrors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// Wrap - Wrap an error with a context message. Returns nil if err is nil.
func Wrap(err error, msg string) error {
	return cerrors.Wrap(err, msg)
}

// Wrapf - Wrap an error with a formatted context message. Returns nil if err
// is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return cerrors.Wrapf(err, format, args...)
}

// ClassifyFetch maps a transport-level error from http.Client.Do onto the
// page-fetch taxonomy: DNS failure, connection refused, timeout, or unknown.
func ClassifyFetch(err error) error {
	if err == nil {
		return nil
	}
	var dnsErr *net.DNSError
	if cerrors.As(err, &dnsErr) {
		return WithKind(err, KindDNS, "could not resolve host")
	}
	if cerrors.Is(err, syscall.ECONNREFUSED) {
		return WithKind(err, KindConnRefused, "connection refused")
	}
	if cerrors.Is(err, context.DeadlineExceeded) {
		return WithKind(err, KindTimeout, "request timed out")
	}
	var netErr net.Error
	if cerrors.As(err, &netErr) && netErr.Timeout() {
		return WithKind(err, KindTimeout, "request timed out")
	}
	return WithKind(err, KindUnknown, "request failed")
}
