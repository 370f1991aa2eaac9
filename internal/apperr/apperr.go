// Package apperr defines the closed set of failure kinds surfaced to callers.
//
// Every user-visible failure carries exactly one Kind. Transport layers switch
// on KindOf(err) to pick a response; anything without a Kind is Internal.
package apperr

import (
	"errors"
)

type Kind uint8

const (
	Internal Kind = iota
	NotFound
	Inactive
	PastTimestamp
	Conflict
	OutOfHours
	MisalignedSlot
	ImmutableState
	AlreadyCancelled
	AlreadyCompleted
	CancellationWindowClosed
	UseCancelEndpoint
	DuplicateIdentifier
	Validation
	ServiceUnavailable
)

var kindCodes = [...]string{
	Internal:                 "INTERNAL",
	NotFound:                 "NOT_FOUND",
	Inactive:                 "INACTIVE",
	PastTimestamp:            "PAST_TIMESTAMP",
	Conflict:                 "CONFLICT",
	OutOfHours:               "OUT_OF_HOURS",
	MisalignedSlot:           "MISALIGNED_SLOT",
	ImmutableState:           "IMMUTABLE_STATE",
	AlreadyCancelled:         "ALREADY_CANCELLED",
	AlreadyCompleted:         "ALREADY_COMPLETED",
	CancellationWindowClosed: "CANCELLATION_WINDOW_CLOSED",
	UseCancelEndpoint:        "USE_CANCEL_ENDPOINT",
	DuplicateIdentifier:      "DUPLICATE_IDENTIFIER",
	Validation:               "VALIDATION",
	ServiceUnavailable:       "SERVICE_UNAVAILABLE",
}

// String returns the stable wire code of the kind, e.g. "CONFLICT".
func (k Kind) String() string {
	if int(k) < len(kindCodes) {
		return kindCodes[k]
	}
	return kindCodes[Internal]
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindCodes))
	for k := range kindCodes {
		out = append(out, Kind(k))
	}
	return out
}

// Error is a classified failure. Err, when set, is the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match against another *Error of the same kind. A target with a
// message only matches an error carrying that exact message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Msg == "" || t.Msg == e.Msg
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap classifies cause under kind. A nil cause yields nil.
func Wrap(kind Kind, msg string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
