package browser

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotStarted is returned by operations called before Start.
	ErrSessionNotStarted = errors.New("browser session not started")

	// ErrSessionClosed is returned by every operation once the session is closed.
	ErrSessionClosed = errors.New("browser session closed")

	// ErrSessionActive is returned by Start on a session that is already running.
	ErrSessionActive = errors.New("browser session already started")

	// ErrNoElement matches the failure raised when a query finds nothing.
	ErrNoElement = errors.New("no element found")
)

// noElementError reports an empty query result for one selector.
type noElementError struct {
	selector string
}

func (e *noElementError) Error() string {
	return fmt.Sprintf("no element with '%s' query found", e.selector)
}

func (e *noElementError) Is(target error) bool {
	return target == ErrNoElement
}

// OperationError is returned by a session operation whose failure closed the session.
type OperationError struct {
	// Op names the failed operation, e.g. "goto" or "wait_for"
	Op string

	// Target is the URL or selector the operation was given
	Target string

	// Err is the captured failure
	Err error

	// TeardownErr is set when closing the browser after the failure also failed
	TeardownErr error
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s %q failed: %v", e.Op, e.Target, e.Err)
	if e.TeardownErr != nil {
		msg += fmt.Sprintf(" (teardown failed: %v)", e.TeardownErr)
	}
	return msg
}

// Unwrap exposes both the captured failure and any teardown failure to errors.Is/As.
func (e *OperationError) Unwrap() []error {
	if e.TeardownErr == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.TeardownErr}
}
