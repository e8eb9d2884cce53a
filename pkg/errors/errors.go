// Package errors provides structured error reporting for hostkit.
//
// Lifecycle operations never return errors or panic on misuse. Instead they
// report a [HostError] to the global [ErrorHandler] and degrade to a no-op.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindMisuse indicates structural misuse of the controller API, such as
	// initializing a controller twice or attaching it to a nil host.
	KindMisuse
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindScenario indicates a failure while loading or running a scenario.
	KindScenario
)

func (k ErrorKind) String() string {
	switch k {
	case KindMisuse:
		return "misuse"
	case KindPanic:
		return "panic"
	case KindScenario:
		return "scenario"
	default:
		return "unknown"
	}
}

var (
	// ErrAlreadyInitialized is reported when a controller is initialized twice.
	ErrAlreadyInitialized = stderrors.New("controller already initialized")
	// ErrNilHost is reported when a controller is initialized without a host.
	ErrNilHost = stderrors.New("nil controller host")
	// ErrNilController is reported when a nil controller is added to a host.
	ErrNilController = stderrors.New("nil controller")
)

// HostError represents a structured error raised by the lifecycle system.
type HostError struct {
	// Op is the operation that failed (e.g., "controller.Base.Init").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Alias is the controller alias involved, if any.
	Alias string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *HostError) Error() string {
	if e.Alias != "" {
		return fmt.Sprintf("%s [%s] alias=%s: %v", e.Op, e.Kind, e.Alias, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *HostError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "loop.Tick").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by hostkit.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *HostError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}

// Misuse builds a KindMisuse error for op.
func Misuse(op string, err error) *HostError {
	return &HostError{Op: op, Kind: KindMisuse, Err: err}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
