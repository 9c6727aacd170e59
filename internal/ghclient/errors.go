package ghclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Failure classes for a GraphQL round trip. Every error returned by this
// package wraps exactly one of them.
var (
	// ErrTransport indicates the request never produced a usable HTTP reply:
	// it could not be sent, the connection failed or timed out, or the
	// status was not 2xx.
	ErrTransport = errors.New("transport failure")

	// ErrDecode indicates the reply body was not the expected JSON.
	ErrDecode = errors.New("malformed response")

	// ErrProtocol indicates a well-formed reply whose errors list was not
	// empty, or a page that cannot be continued.
	ErrProtocol = errors.New("graphql errors")

	// ErrIntegrity indicates a well-formed reply with null data and no errors.
	ErrIntegrity = errors.New("response carried no data")

	// ErrCancelled indicates the caller's context ended before completion.
	ErrCancelled = errors.New("request cancelled")
)

// Kind is the classification of an error produced by this package.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindDecode
	KindProtocol
	KindIntegrity
	KindCancelled
)

// String returns a short human label for the kind.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "network error"
	case KindDecode:
		return "malformed response"
	case KindProtocol:
		return "GitHub API error"
	case KindIntegrity:
		return "empty response"
	case KindCancelled:
		return "cancelled"
	default:
		return "error"
	}
}

// KindOf classifies err. Cancellation is checked first because a cancelled
// request may also surface as a transport failure.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrDecode):
		return KindDecode
	case errors.Is(err, ErrProtocol):
		return KindProtocol
	case errors.Is(err, ErrIntegrity):
		return KindIntegrity
	default:
		return KindUnknown
	}
}

// GraphQLError is one entry of a response's errors array. Only message is
// required by the protocol; the rest is kept for diagnostics.
type GraphQLError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Path    []any  `json:"path,omitempty"`
}

// ProtocolError carries the messages of a non-empty errors array.
type ProtocolError struct {
	Messages []GraphQLError
}

func (e *ProtocolError) Error() string {
	msgs := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		msgs = append(msgs, m.Message)
	}
	return fmt.Sprintf("%s: %s", ErrProtocol, strings.Join(msgs, "; "))
}

// Unwrap lets errors.Is match ErrProtocol.
func (e *ProtocolError) Unwrap() error { return ErrProtocol }

// maxStatusBody is how many runes of a reply body StatusError prints.
const maxStatusBody = 200

// StatusError is a non-2xx HTTP reply.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if utf8.RuneCountInString(body) > maxStatusBody {
		body = string([]rune(body)[:maxStatusBody]) + "..."
	}
	return fmt.Sprintf("%s: status %d: %s", ErrTransport, e.StatusCode, body)
}

// Unwrap lets errors.Is match ErrTransport.
func (e *StatusError) Unwrap() error { return ErrTransport }

// classifyRequestError wraps an error from http.Client.Do. A done context
// wins over whatever the network layer reported.
func classifyRequestError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}
