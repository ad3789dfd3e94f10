package errors

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

var (
	ErrInvalidSession              = fmt.Errorf("invalid session")
	ErrComponentNotFound           = fmt.Errorf("component not found")
	ErrComponentAlreadyRegistered  = fmt.Errorf("component already registered")
	ErrMethodResolution            = fmt.Errorf("method resolution failure")
	ErrSubscriberInvocationFailure = fmt.Errorf("subscriber invocation failure")
	ErrActivationFailure           = fmt.Errorf("activation failure")
	ErrEventNotFound               = fmt.Errorf("event not found")
	ErrInvalidToken                = fmt.Errorf("invalid correlation token")
	ErrInvalidFilter               = fmt.Errorf("invalid filter descriptor")
	ErrInvalidArgument             = fmt.Errorf("invalid argument")
	ErrAuthenticationFailed        = fmt.Errorf("authentication failed")
	ErrNoCallbackSink              = fmt.Errorf("no callback sink for session")
	ErrPoolSaturated               = fmt.Errorf("thread pool saturated")
	ErrPoolStopped                 = fmt.Errorf("thread pool stopped")
	ErrWorkerPanic                 = fmt.Errorf("worker panic")

	// ErrSuppressed is returned by a subscriber entry whose filter rejected the
	// invocation. The invoker skips it: it is neither a result nor a failure.
	ErrSuppressed = fmt.Errorf("invocation suppressed by filter")

	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
)

// SubscriberInvocationError aggregates the failures of a multicast invocation
// when more than one subscriber failed.
type SubscriberInvocationError struct {
	Errs []error
}

func (e *SubscriberInvocationError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%s: %d subscribers failed: [%s]",
		ErrSubscriberInvocationFailure, len(e.Errs), strings.Join(msgs, "; "))
}

// Unwrap exposes every collected failure to errors.Is / errors.As.
func (e *SubscriberInvocationError) Unwrap() []error {
	return e.Errs
}

func (e *SubscriberInvocationError) Is(target error) bool {
	return target == ErrSubscriberInvocationFailure
}

// PanicError carries a recovered panic value together with the stack of the
// goroutine that panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func NewPanicError(value any) *PanicError {
	return &PanicError{Value: value, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Is, As and Join re-export the standard helpers so callers importing this
// package under the name "errors" keep access to them.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func Join(errs ...error) error { return errors.Join(errs...) }

func New(text string) error { return errors.New(text) }
