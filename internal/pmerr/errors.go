package pmerr

import (
	"errors"
	"fmt"
)

// Kind classifies failures so the CLI can map them onto exit codes.
type Kind int

const (
	Unknown Kind = iota
	NoMapInfo
	NoMemInfo
	TooManyPages
	TooFewPages
	TooManyRegions
	AllocFailed
	SmallWindow
	NoProcess
	Fault
	BadOption
	NoPID
)

var kindNames = map[Kind]string{
	Unknown:        "unknown",
	NoMapInfo:      "no map info",
	NoMemInfo:      "no memory info",
	TooManyPages:   "too many pages",
	TooFewPages:    "too few pages",
	TooManyRegions: "too many regions",
	AllocFailed:    "allocation failed",
	SmallWindow:    "window too small",
	NoProcess:      "process exited",
	Fault:          "fatal fault",
	BadOption:      "bad option",
	NoPID:          "no such process",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ExitCode returns the process exit status for the kind. A target that exits
// while being watched is a normal shutdown.
func (k Kind) ExitCode() int {
	switch k {
	case NoProcess:
		return 0
	case Unknown:
		return 1
	default:
		return int(k) + 1
	}
}

// Error is a classified failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, pmerr.New(k, ""))
// works as a kind test.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// New creates a classified error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps err onto a process exit status; nil means success.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return KindOf(err).ExitCode()
}
