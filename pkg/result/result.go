// Package result provides a small value-or-error type used to run an
// operation exactly once and capture its outcome without nesting error
// handling at every call site.
//
// Usage:
//
//	res := result.Attempt(func() (string, error) { return page.Title() })
//	if res.Failed() {
//	    log.Printf("title failed: %v", res.Err())
//	}
//	title := res.Value()
package result

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Result holds the outcome of a single attempted operation.
// Exactly one of value or err is meaningful: Value is only valid when Err is nil.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful result carrying value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail returns a failed result carrying err.
// A nil err is replaced by ErrNilFailure so the result still reports failure.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = ErrNilFailure
	}
	return Result[T]{err: err}
}

// Attempt runs fn once and captures its outcome.
// A returned error or a panic inside fn becomes a failed Result; Attempt never panics.
func Attempt[T any](fn func() (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Fail[T](&PanicError{Value: r, Stack: debug.Stack()})
		}
	}()

	value, err := fn()
	if err != nil {
		return Fail[T](err)
	}
	return Ok(value)
}

// AttemptErr is Attempt for operations that only report an error.
func AttemptErr(fn func() error) Result[struct{}] {
	return Attempt(func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

// Value returns the captured value. It is the zero value when the result failed.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the captured failure, or nil on success.
func (r Result[T]) Err() error {
	return r.err
}

// Failed reports whether the operation failed.
func (r Result[T]) Failed() bool {
	return r.err != nil
}

// Unpack returns the (value, error) pair.
func (r Result[T]) Unpack() (T, error) {
	return r.value, r.err
}

// ErrNilFailure marks a result that was failed without a cause.
var ErrNilFailure = errors.New("operation failed without an error value")

// PanicError wraps a value recovered from a panicking operation.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("operation panicked: %v", e.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
