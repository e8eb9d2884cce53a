package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

type handlerRef struct {
	h ErrorHandler
}

var current atomic.Pointer[handlerRef]

func init() {
	current.Store(&handlerRef{h: &LogHandler{}})
}

// Handler returns the handler reports are sent to.
func Handler() ErrorHandler {
	return current.Load().h
}

// SetHandler installs h and returns the handler it replaced, so callers can
// restore it. Pass nil to install a LogHandler writing to slog.Default().
func SetHandler(h ErrorHandler) ErrorHandler {
	if h == nil {
		h = &LogHandler{}
	}
	return current.Swap(&handlerRef{h: h}).h
}

// Report stamps err and sends it to the installed handler. Misuse reports get
// the caller's stack attached, since the call site is usually the bug.
func Report(err *HostError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if err.Kind == KindMisuse && err.StackTrace == "" {
		err.StackTrace = CaptureStack()
	}
	Handler().HandleError(err)
}

// ReportPanic stamps err and sends it to the installed handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandlePanic(err)
}

// Recover reports a panic in progress as a PanicError for op. It must be
// deferred directly:
//
//	defer errors.Recover("loop.Tick")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{
			Op:         op,
			Value:      r,
			StackTrace: CaptureStack(),
		})
	}
}

const stackDepth = 32

// CaptureStack returns the call stack of its caller's caller, one
// "function\n\tfile:line" entry per frame. Frames inside this package and the
// runtime are left out.
func CaptureStack() string {
	var pcs [stackDepth]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		if !skipFrame(frame.Function) {
			sb.WriteString(frame.Function)
			sb.WriteString("\n\t")
			sb.WriteString(frame.File)
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(frame.Line))
			sb.WriteByte('\n')
		}
		if !more {
			break
		}
	}
	return sb.String()
}

func skipFrame(fn string) bool {
	return fn == "" ||
		strings.HasPrefix(fn, "runtime.") ||
		strings.HasPrefix(fn, "github.com/go-drift/hostkit/pkg/errors.")
}
