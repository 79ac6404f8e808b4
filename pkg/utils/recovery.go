package utils

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// PanicError is a recovered panic carried as an error.
type PanicError struct {
	Value      any
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// RecoverAsError turns a panic in the calling function into a *PanicError
// stored in *errPtr. Use it deferred, with a named error result:
//
//	func evaluate() (err error) {
//	    defer RecoverAsError(&err)
//	    ...
//	}
func RecoverAsError(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = newPanicError(r)
	}
}

// RecoverWithCallback recovers a panic and passes it to callback. It is
// meant for goroutines that have no error result.
func RecoverWithCallback(callback func(error)) {
	if r := recover(); r != nil {
		err := newPanicError(r)
		slog.Error("Recovered from panic", "panic", r, "stack", err.StackTrace)
		if callback != nil {
			callback(err)
		}
	}
}

func newPanicError(r any) *PanicError {
	return &PanicError{
		Value:      r,
		StackTrace: string(debug.Stack()),
	}
}
