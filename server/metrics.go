package server

import "time"

// Recorder receives per-request measurements. The metrics package provides
// a Prometheus implementation.
type Recorder interface {
	// RequestStarted is called when a request enters the server.
	RequestStarted(server, method string)

	// RequestFinished is called once the response is complete.
	RequestFinished(server, method string, status int, duration time.Duration)

	// HandlerFailed is called when a handler panics or fails the chain.
	// reason is "panic" or "error".
	HandlerFailed(server, reason string)
}

type nopRecorder struct{}

func (nopRecorder) RequestStarted(string, string) {}

func (nopRecorder) RequestFinished(string, string, int, time.Duration) {}

func (nopRecorder) HandlerFailed(string, string) {}
