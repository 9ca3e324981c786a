// Package apperr defines the typed application errors surfaced to users.
// Every failure the service can show on a card is one of these kinds; the
// handler boundary converts anything else into a generic upstream error.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tags the error variant. The HTTP layer never branches on message
// text, only on the kind.
type Kind int

const (
	// KindMissingParam means the caller's input was absent or malformed.
	KindMissingParam Kind = iota
	// KindNotFound means the upstream API reported that the requested
	// repository or user does not exist.
	KindNotFound
	// KindGraphQL means the upstream API returned an error we do not
	// classify further.
	KindGraphQL
	// KindMaxRetry means every configured credential was rate limited.
	KindMaxRetry
)

// Error carries a primary message rendered on the card and an optional
// secondary hint line shown below it.
type Error struct {
	Kind             Kind
	Message          string
	SecondaryMessage string
}

func (e *Error) Error() string {
	if e.SecondaryMessage == "" {
		return e.Message
	}
	return e.Message + ": " + e.SecondaryMessage
}

// New creates an Error of the given kind.
func New(kind Kind, message, secondary string) *Error {
	return &Error{Kind: kind, Message: message, SecondaryMessage: secondary}
}

// MissingParam reports absent or malformed request parameters.
func MissingParam(params ...string) *Error {
	return &Error{
		Kind:             KindMissingParam,
		Message:          fmt.Sprintf("Missing params (%s)", strings.Join(params, ", ")),
		SecondaryMessage: "Make sure you pass the parameters in the URL",
	}
}

// NotFound reports that the upstream API could not resolve the target.
func NotFound(message, secondary string) *Error {
	return &Error{Kind: KindNotFound, Message: message, SecondaryMessage: secondary}
}

// GraphQL reports an unclassified upstream GraphQL failure.
func GraphQL(message string) *Error {
	return &Error{
		Kind:             KindGraphQL,
		Message:          message,
		SecondaryMessage: "Please try again later",
	}
}

// MaxRetry reports that all configured credentials were rate limited.
func MaxRetry() *Error {
	return &Error{
		Kind:             KindMaxRetry,
		Message:          "Downtime due to GitHub API rate limiting",
		SecondaryMessage: "Add another PAT_* environment variable with a GitHub API token",
	}
}

// NoTokens reports that no credential is configured at all.
func NoTokens() *Error {
	return &Error{
		Kind:             KindMaxRetry,
		Message:          "No GitHub API tokens configured",
		SecondaryMessage: "Add an environment variable called PAT_1 with a GitHub API token",
	}
}

// From extracts the application error from err, or wraps err into a
// generic upstream error so the handler always has something renderable.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return GraphQL("Something went wrong")
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
