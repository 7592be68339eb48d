package codegen

import (
	"errors"
	"fmt"

	"hackvm/pkg/vm"
)

var (
	// ErrUnaddressable is returned when a segment cannot serve as the
	// source or target of a push/pop, e.g. popping to constant.
	ErrUnaddressable = errors.New("segment not addressable")
	// ErrNotImplemented is returned for commands outside the selected
	// protocol level.
	ErrNotImplemented = errors.New("code generation not implemented")
	// ErrMalformedLabel is returned for an empty label, function or unit
	// name, or one that contains the reserved '$'.
	ErrMalformedLabel = errors.New("malformed label name")
)

// Error reports the command that failed to translate.
type Error struct {
	Unit   string
	Line   int
	Source string
	Err    error
	Msg    string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%v for [%s:%d]: '%s'", e.Err, e.Unit, e.Line, e.Source)
	}
	return fmt.Sprintf("%v for [%s:%d]: '%s': %s", e.Err, e.Unit, e.Line, e.Source, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// kindError is what the individual generators return; the orchestrator
// attaches the source position.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return fmt.Sprintf("%v: %s", e.kind, e.msg) }
func (e *kindError) Unwrap() error { return e.kind }

func errorf(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func wrap(sc vm.SourceCommand, err error) error {
	e := &Error{Unit: sc.Unit, Line: sc.Line, Source: sc.Source, Err: err}
	var ke *kindError
	if errors.As(err, &ke) {
		e.Err = ke.kind
		e.Msg = ke.msg
	}
	return e
}

// Warning is a non-fatal diagnostic about the input.
type Warning struct {
	Unit   string
	Line   int
	Source string
	Msg    string
}

func (w Warning) String() string {
	return fmt.Sprintf("warning: %s[%d] (%s): %s", w.Unit, w.Line, w.Source, w.Msg)
}
