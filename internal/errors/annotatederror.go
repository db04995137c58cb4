// Package errors provides annotated errors that carry structured logging
// attributes and the source location where the error was created. It also
// re-exports the standard library helpers so that call sites only need one
// errors import.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

// annotatedError is an error with slog attributes and a source location.
type annotatedError struct {
	msg    string
	cause  error
	attrs  []slog.Attr
	source string
}

func (e *annotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.cause
}

// New creates an error annotated with the call site and optional attributes.
func New(msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, cause: nil, attrs: attrs, source: callerSource()}
}

// NewSentinel creates a plain error for package-level sentinels matched with
// Is. It records no source so the value stays comparable wherever it is used.
func NewSentinel(msg string) error {
	//nolint:err113 // this is the sentinel constructor.
	return errors.New(msg)
}

// Wrap annotates err with a message and optional attributes. The resulting
// message chain reads "msg: err".
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, cause: err, attrs: attrs, source: callerSource()}
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join returns an error wrapping the given errors, discarding nil values.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// SlogError bundles an error's message, its collected annotations, and the
// source location closest to the root cause into a single log attribute.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}
	var (
		annotations []any
		source      string
	)
	collect(err, &annotations, &source)
	args := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		args = append(args, slog.Group("annotations", annotations...))
	}
	if source != "" {
		args = append(args, slog.String("source", source))
	}
	return slog.Group("error", args...)
}

// DecoratePanic converts a value recovered from a panic into an error whose
// source points at the panic site rather than the recovery handler.
func DecoratePanic(recovered any) error {
	const maxFrames = 64
	pc := make([]uintptr, maxFrames)
	n := runtime.Callers(2, pc) //nolint:mnd // skip runtime.Callers and DecoratePanic.
	frames := runtime.CallersFrames(pc[:n])
	var source string
	pastPanic := false
	for {
		frame, more := frames.Next()
		if pastPanic && !strings.HasPrefix(frame.Function, "runtime.") {
			source = fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
			break
		}
		if frame.Function == "runtime.gopanic" {
			pastPanic = true
		}
		if !more {
			break
		}
	}
	return &annotatedError{msg: fmt.Sprintf("panic: %v", recovered), source: source}
}

// collect walks the error tree gathering attributes. The deepest annotated
// error in the chain provides the source location.
func collect(err error, annotations *[]any, source *string) {
	if err == nil {
		return
	}
	if annotated, ok := err.(*annotatedError); ok {
		for _, attr := range annotated.attrs {
			*annotations = append(*annotations, attr)
		}
		if annotated.source != "" {
			*source = annotated.source
		}
	}
	switch unwrapped := err.(type) {
	case interface{ Unwrap() error }:
		collect(unwrapped.Unwrap(), annotations, source)
	case interface{ Unwrap() []error }:
		for _, joined := range unwrapped.Unwrap() {
			collect(joined, annotations, source)
		}
	}
}

func callerSource() string {
	//nolint:mnd // skip runtime.Caller, callerSource, and the constructor.
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
