package gateway

import (
	"errors"
	"fmt"
)

// ErrUnknownBackend is wrapped by every error raised for a backend that has
// no registered client.
var ErrUnknownBackend = errors.New("unknown backend")

// Kind classifies gateway failures.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUnknownBackend: a route referenced a backend with no client.
	KindUnknownBackend
	// KindValidation: a required inbound field was empty.
	KindValidation
	// KindTransport: the backend could not be reached or its body not read.
	KindTransport
	// KindEncoding: the outbound payload could not be encoded.
	KindEncoding
)

func (k Kind) String() string {
	switch k {
	case KindUnknownBackend:
		return "unknown_backend"
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindEncoding:
		return "encoding"
	default:
		return "unknown"
	}
}

// Error carries a kind and a message that is safe to show to clients. The
// wrapped Err holds the detail and is meant for logs only.
type Error struct {
	Kind    Kind
	Op      string // operation that failed
	Backend string // backend name if applicable
	Message string // client-safe message
	Err     error  // underlying cause
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Backend != "" {
		msg = fmt.Sprintf("gateway %s [%s]: %s", e.Op, e.Backend, msg)
	} else {
		msg = fmt.Sprintf("gateway %s: %s", e.Op, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError reports an empty or malformed inbound field.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Op: "validate", Message: message}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindUnknown
}
