package server

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by Start when the server is starting
	// or started.
	ErrAlreadyRunning = errors.New("server: already running")

	// ErrAlreadyStopped is returned by Stop when the server is not started.
	ErrAlreadyStopped = errors.New("server: already stopped")

	// ErrNotStopped is wrapped by StateError.
	ErrNotStopped = errors.New("server: not stopped")

	// ErrInvalidProtocol is returned for a protocol other than http, https
	// or h2c.
	ErrInvalidProtocol = errors.New("server: invalid protocol")

	// ErrInvalidPort is returned for a port outside 0-65535.
	ErrInvalidPort = errors.New("server: invalid port")
)

// StateError is returned by a configuration setter called while the server
// is not stopped.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("server: %s requires state %s, current state is %s", e.Op, Stopped, e.State)
}

func (e *StateError) Unwrap() error {
	return ErrNotStopped
}
