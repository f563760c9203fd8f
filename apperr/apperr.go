// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error returned by the election core.
// The set is closed; callers switch on it instead of matching strings.
type Kind int

const (
	KindUnexpected Kind = iota
	KindElectionNotFound
	KindVoterNotFound
	KindElectionNotActive
	KindVoterAlreadyVoted
	KindDuplicateEntry
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindElectionNotFound:
		return "ELECTION_NOT_FOUND"
	case KindVoterNotFound:
		return "VOTER_NOT_FOUND"
	case KindElectionNotActive:
		return "ELECTION_NOT_ACTIVE"
	case KindVoterAlreadyVoted:
		return "VOTER_ALREADY_VOTED"
	case KindDuplicateEntry:
		return "DUPLICATE_ENTRY"
	case KindInvalidInput:
		return "INVALID_INPUT"
	default:
		return "UNEXPECTED"
	}
}

// Sentinels for errors.Is comparisons. Matching is by Kind only.
var (
	ErrUnexpected        = &Error{Kind: KindUnexpected}
	ErrElectionNotFound  = &Error{Kind: KindElectionNotFound}
	ErrVoterNotFound     = &Error{Kind: KindVoterNotFound}
	ErrElectionNotActive = &Error{Kind: KindElectionNotActive}
	ErrVoterAlreadyVoted = &Error{Kind: KindVoterAlreadyVoted}
	ErrDuplicateEntry    = &Error{Kind: KindDuplicateEntry}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
)

// Error carries a Kind, the operation that produced it, and an optional cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// E builds an *Error. err may be nil.
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an *Error whose cause is a formatted message.
func Errorf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain,
// or KindUnexpected when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Unexpected wraps an infrastructure failure. An error that already carries
// a Kind is returned unchanged so lookup misses are not masked.
func Unexpected(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return E(KindUnexpected, op, err)
}
