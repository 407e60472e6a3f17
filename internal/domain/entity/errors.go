// Package entity internal/domain/entity/errors.go
package entity

// Kind classifies a failure raised by the quote pipeline
type Kind int

const (
	// KindType is raised when the input shape cannot be turned into a currency list
	KindType Kind = iota + 1
	// KindValue is raised for malformed pairs, empty lists and pairs rejected upstream
	KindValue
	// KindTransport wraps network, status and decoding failures from collaborators
	KindTransport
)

// String returns the kind name used in logs and metric labels
func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindValue:
		return "value"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every layer of the pipeline
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any error of the same kind when the target is one of the bare kind sentinels
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels, usable with errors.Is
var (
	ErrType      = &Error{Kind: KindType}
	ErrValue     = &Error{Kind: KindValue}
	ErrTransport = &Error{Kind: KindTransport}
)

// Specific failures
var (
	ErrInputType  = &Error{Kind: KindType, Message: "currency list must be a list or a string"}
	ErrEmptyList  = &Error{Kind: KindValue, Message: "currency list is empty"}
	ErrPairFormat = &Error{Kind: KindValue, Message: "currency pair must be in the format BASE-QUOTE"}
	ErrCodeLength = &Error{Kind: KindValue, Message: "each currency code must have 3 or 4 characters"}
	ErrAllInvalid = &Error{Kind: KindValue, Message: "all params are invalid"}
)

// TransportError wraps a collaborator failure
func TransportError(message string, err error) error {
	return &Error{Kind: KindTransport, Message: message, Err: err}
}
