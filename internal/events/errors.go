package events

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// ErrQueueFull is returned by SendEvent when the outgoing queue is saturated
var ErrQueueFull = errors.New("event queue full")

// ErrNotConnected is returned when writing to a client that has no connection
var ErrNotConnected = errors.New("not connected to daemon")

// ErrorCode classifies daemon connection failures
type ErrorCode int

const (
	ErrSocketNotFound ErrorCode = iota
	ErrSocketPermission
	ErrDaemonNotRunning
	ErrConnectionRefused
)

// DaemonError is a dial failure with a hint for the user
type DaemonError struct {
	Code ErrorCode
	Hint string
	Err  error
}

func (e *DaemonError) Error() string {
	msg := e.Code.String()
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *DaemonError) Unwrap() error {
	return e.Err
}

// String returns a short description of the code
func (c ErrorCode) String() string {
	switch c {
	case ErrSocketNotFound:
		return "socket file not found"
	case ErrSocketPermission:
		return "permission denied"
	case ErrConnectionRefused:
		return "connection refused"
	default:
		return "daemon not running"
	}
}

// ClassifyDaemonError maps a dial error to a DaemonError with a user hint.
// It returns nil for a nil error.
func ClassifyDaemonError(err error) *DaemonError {
	if err == nil {
		return nil
	}

	start := "Start it with: dealboard-daemon &"
	var errno syscall.Errno
	switch {
	case os.IsNotExist(err) || errors.Is(err, os.ErrNotExist):
		return &DaemonError{Code: ErrSocketNotFound, Hint: start, Err: err}
	case os.IsPermission(err) || errors.Is(err, os.ErrPermission):
		return &DaemonError{
			Code: ErrSocketPermission,
			Hint: "Check permissions: chmod 700 ~/.dealboard/",
			Err:  err,
		}
	case errors.As(err, &errno) && errno == syscall.ECONNREFUSED:
		return &DaemonError{
			Code: ErrConnectionRefused,
			Hint: fmt.Sprintf("The daemon may have crashed. %s", start),
			Err:  err,
		}
	default:
		return &DaemonError{Code: ErrDaemonNotRunning, Hint: start, Err: err}
	}
}
