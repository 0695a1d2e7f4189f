package engine

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// FaultError reports an unrecoverable failure during a simulation step or
// a posted command, together with the number of steps completed since the
// last load.
type FaultError struct {
	Err            error
	StepsSinceLoad int
	Stack          []byte
}

func (f *FaultError) Error() string {
	return fmt.Sprintf("simulation fault after %d steps: %v", f.StepsSinceLoad, f.Err)
}

func (f *FaultError) Unwrap() error {
	return f.Err
}

func newFault(r any, steps int) *FaultError {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("%v", r)
	}
	var fe *FaultError
	if errors.As(err, &fe) {
		return fe
	}
	return &FaultError{Err: err, StepsSinceLoad: steps, Stack: debug.Stack()}
}

// ErrorListener receives faults on the simulation goroutine.
type ErrorListener interface {
	Error(err error, stepsSinceLoad int)
}
