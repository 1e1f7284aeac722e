package txtimez

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHandle is returned when StopTx receives a handle that was not
	// produced by StartTx or that has already been stopped.
	ErrInvalidHandle = errors.New("invalid measurement handle")

	// ErrAlreadyFinished is returned when a measurement is finished twice.
	ErrAlreadyFinished = errors.New("measurement already finished")

	// ErrNotFinished is returned when the duration of a running measurement is requested.
	ErrNotFinished = errors.New("measurement not finished")

	// ErrNotInitialized is returned by Default before Init has been called.
	ErrNotInitialized = errors.New("registry not initialized")

	// ErrAlreadyInitialized is returned by a second call to Init.
	ErrAlreadyInitialized = errors.New("registry already initialized")
)

// Phase names the point in a measurement's lifecycle at which a listener runs.
type Phase string

const (
	PhaseStart Phase = "start"
	PhaseEnd   Phase = "end"
)

// ListenerError reports a listener that panicked while handling a measurement.
type ListenerError struct {
	Value     interface{}
	Phase     Phase
	Name      Key
	HandlerID uint64
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %d panicked on %s of %q: %v", e.HandlerID, e.Phase, e.Name, e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *ListenerError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
