package mux

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRouteNotFound is returned by Dispatch when no registered route is
// eligible for the request.
var ErrRouteNotFound = errors.New("no matching route was found")

// ErrNilContext is returned by Dispatch when a handler returns a nil context.
var ErrNilContext = errors.New("handler returned a nil context")

// ErrInvalidRoute is wrapped by configuration errors raised at registration.
var ErrInvalidRoute = errors.New("invalid route configuration")

// ErrPropertyNotFound is wrapped by PropertyError when a key is absent.
var ErrPropertyNotFound = errors.New("property not found")

// ErrPropertyType is wrapped by PropertyError when a key holds a value of
// another type than the one requested.
var ErrPropertyType = errors.New("property type mismatch")

// RouteNotFoundError reports the request that no route accepted.
type RouteNotFoundError struct {
	Method string
	Path   string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("mux: %s for %s %s", ErrRouteNotFound, e.Method, e.Path)
}

func (e *RouteNotFoundError) Unwrap() error {
	return ErrRouteNotFound
}

// ConfigError is returned when routes cannot be registered. For reflective
// registration it names the type and lists every offending method.
type ConfigError struct {
	// Type is the handler type name, empty for direct registration.
	Type string
	// Methods lists the offending method names, if any.
	Methods []string
	// Reason describes what is wrong.
	Reason string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("mux: ")
	if e.Type != "" {
		fmt.Fprintf(&b, "type %s: ", e.Type)
	}
	b.WriteString(e.Reason)
	if len(e.Methods) > 0 {
		fmt.Fprintf(&b, " (methods: %s)", strings.Join(e.Methods, ", "))
	}

	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidRoute
}

// PropertyError is returned by typed property reads.
type PropertyError struct {
	Key string
	// Want is the requested type name.
	Want string
	// Got is the stored type name; empty when the key is absent.
	Got string
	Err error
}

func (e *PropertyError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("mux: %s: %q", e.Err, e.Key)
	}

	return fmt.Sprintf("mux: %s: %q holds %s, not %s", e.Err, e.Key, e.Got, e.Want)
}

func (e *PropertyError) Unwrap() error {
	return e.Err
}
