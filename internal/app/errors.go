package app

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindMalformedInput
	KindUnknownAction
	KindDuplicateJoin
	KindNotFound
	KindNotJoined
	KindInvalidParameter
	KindEngineRejection
	KindRateLimited
)

var kindMessages = map[ErrorKind]string{
	KindInternal:         "Internal Server Error",
	KindMalformedInput:   "Invalid JSON message!",
	KindUnknownAction:    "Invalid action!",
	KindDuplicateJoin:    "Already joined a game",
	KindNotFound:         "Game not found",
	KindNotJoined:        "Not joined a game",
	KindInvalidParameter: "Invalid parameter!",
	KindEngineRejection:  "Selection rejected",
	KindRateLimited:      "Too many requests!",
}

// Message is the wire text for the kind.
func (k ErrorKind) Message() string {
	if m, ok := kindMessages[k]; ok {
		return m
	}
	return kindMessages[KindInternal]
}

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedInput:
		return "malformed_input"
	case KindUnknownAction:
		return "unknown_action"
	case KindDuplicateJoin:
		return "duplicate_join"
	case KindNotFound:
		return "not_found"
	case KindNotJoined:
		return "not_joined"
	case KindInvalidParameter:
		return "invalid_parameter"
	case KindEngineRejection:
		return "engine_rejection"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Error carries the kind an operation failed with. Err is the cause, if any.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrDuplicateJoin) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Kind == e.Kind
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

var (
	ErrMalformedInput   = &Error{Kind: KindMalformedInput}
	ErrUnknownAction    = &Error{Kind: KindUnknownAction}
	ErrDuplicateJoin    = &Error{Kind: KindDuplicateJoin}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrNotJoined        = &Error{Kind: KindNotJoined}
	ErrInvalidParameter = &Error{Kind: KindInvalidParameter}
	ErrEngineRejection  = &Error{Kind: KindEngineRejection}
	ErrInternal         = &Error{Kind: KindInternal}
)

// KindOf maps any error to its kind. Unknown errors are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
