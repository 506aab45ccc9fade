package plumbing

import (
	"fmt"
)

// Kind classifies the errors surfaced by this package and its
// sub-packages (backend, packfile, config, refs).
type Kind int8

const (
	// KindInvalidArgument is returned for malformed caller input: an
	// invalid reference name, or a reference of unknown type given to a
	// backend. A malformed object id is reported with ErrInvalidOid or a
	// hex decoding error instead.
	KindInvalidArgument Kind = iota + 1
	// KindNotFound is returned when an object id or reference doesn't
	// exist in any backend.
	KindNotFound
	// KindAmbiguous classifies a unique-prefix lookup that matched more
	// than one id. No function of this module returns it.
	KindAmbiguous
	// KindFormatError is returned for a loose or packed reference that
	// can't be parsed, a circular symbolic reference, and a
	// reference-delta pack entry. Malformed objects, pack headers, delta
	// data and tree modes are reported with the errors of the object and
	// packfile packages (ErrTreeInvalid, ErrCommitInvalid, ErrTagInvalid,
	// ErrInvalidMagic, ErrInvalidVersion, ErrIntOverflow) or with plain
	// errors, none of which match ErrFormatError.
	KindFormatError
	// KindHashMismatch classifies inflated bytes that don't hash to the
	// id the caller requested. It's a FormatError subclass: errors of
	// this Kind also match ErrFormatError. No function of this module
	// returns it.
	KindHashMismatch
	// KindIoError classifies a filesystem error. No function of this
	// module returns it; filesystem errors are returned wrapped as they
	// come from the os or afero packages.
	KindIoError
	// KindClosed classifies an operation attempted on a closed
	// repository. No function of this module returns it.
	KindClosed
	// KindIllegalState classifies an object that lacks required fields
	// at serialization time, or a tree whose entries are
	// unsorted/duplicated. No function of this module returns it.
	KindIllegalState
)

// String returns a human-readable name for the Kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid-argument"
	case KindNotFound:
		return "not-found"
	case KindAmbiguous:
		return "ambiguous"
	case KindFormatError:
		return "format-error"
	case KindHashMismatch:
		return "hash-mismatch"
	case KindIoError:
		return "io-error"
	case KindClosed:
		return "closed"
	case KindIllegalState:
		return "illegal-state"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by this module. It always
// carries a Kind so callers can branch on the failure category without
// string matching, plus an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the wrapped cause so errors.Is/errors.As work across
// this package's error values.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error of the given Kind.
func NewError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Is allows errors.Is(err, plumbing.ErrNotFound) style checks to work by
// comparing the Kind field of two *Error values. An error of
// KindHashMismatch also matches a target of KindFormatError.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind == other.Kind {
		return true
	}
	return e.Kind == KindHashMismatch && other.Kind == KindFormatError
}

// Sentinel errors, one per Kind, meant to be used with errors.Is/xerrors.Is.
// Since (*Error).Is compares by Kind, any *Error of the same Kind
// (wrapped or not) matches these, and a KindHashMismatch error also
// matches ErrFormatError.
var (
	ErrInvalidArgument = NewError(KindInvalidArgument, "invalid argument", nil)
	ErrNotFound        = NewError(KindNotFound, "not found", nil)
	ErrAmbiguous       = NewError(KindAmbiguous, "ambiguous", nil)
	ErrFormatError     = NewError(KindFormatError, "format error", nil)
	ErrHashMismatch    = NewError(KindHashMismatch, "hash mismatch", nil)
	ErrIoError         = NewError(KindIoError, "io error", nil)
	ErrClosed          = NewError(KindClosed, "repository is closed", nil)
	ErrIllegalState    = NewError(KindIllegalState, "illegal state", nil)
)
