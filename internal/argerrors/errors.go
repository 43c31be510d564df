// Package argerrors implements the error-kind taxonomy of §7: each kind
// maps to one way a request or a single (query,case) computation can go
// wrong, and callers distinguish them with errors.As rather than string
// matching, wrapped with fmt.Errorf("...: %w", err) throughout.
package argerrors

import (
	"errors"
	"fmt"
)

// Kind enumerates the error categories of §7.
type Kind int

const (
	// KindInvalidRequest covers unknown algorithms or inconsistent
	// options; rejected before any computation.
	KindInvalidRequest Kind = iota
	// KindMalformedGraph covers an edge referencing a missing node, a
	// duplicate node id, or mixed variants.
	KindMalformedGraph
	// KindEmbeddingProviderError covers failures calling the embedding
	// provider, transient or permanent.
	KindEmbeddingProviderError
	// KindInternalError covers a violated invariant during search.
	KindInternalError
	// KindCancelled covers cooperative cancellation.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "InvalidRequest"
	case KindMalformedGraph:
		return "MalformedGraph"
	case KindEmbeddingProviderError:
		return "EmbeddingProviderError"
	case KindInternalError:
		return "InternalError"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying cause with a Kind so callers can branch on the
// failure category without parsing messages.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// InvalidRequest builds a KindInvalidRequest error.
func InvalidRequest(format string, args ...any) *Error {
	return newf(KindInvalidRequest, nil, format, args...)
}

// MalformedGraph builds a KindMalformedGraph error.
func MalformedGraph(format string, args ...any) *Error {
	return newf(KindMalformedGraph, nil, format, args...)
}

// EmbeddingProviderError wraps a transport/provider failure.
func EmbeddingProviderError(cause error, format string, args ...any) *Error {
	return newf(KindEmbeddingProviderError, cause, format, args...)
}

// Internal builds a KindInternalError error for a violated invariant.
func Internal(format string, args ...any) *Error {
	return newf(KindInternalError, nil, format, args...)
}

// Cancelled wraps a context cancellation.
func Cancelled(cause error) *Error {
	return newf(KindCancelled, cause, "request cancelled")
}

// Is reports whether err is an *Error of the given kind, unwrapping as
// needed.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
