package mux

import (
	"fmt"
	"strings"
)

// Method is the HTTP method filter of a route.
type Method string

// Methods accepted as route filters. MethodAll matches every request
// method, including ones not listed here.
const (
	MethodAll     Method = "ALL"
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodConnect Method = "CONNECT"
)

// knownMethods is the fixed enumeration of route filters.
var knownMethods = []Method{
	MethodAll, MethodGet, MethodHead, MethodPost, MethodPut,
	MethodPatch, MethodDelete, MethodOptions, MethodTrace, MethodConnect,
}

// ParseMethod converts a method token to a Method. Matching is
// case-insensitive and an empty string yields MethodAll.
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return MethodAll, nil
	}

	m := Method(strings.ToUpper(s))
	if !m.Valid() {
		return "", fmt.Errorf("mux: unknown http method %q", s)
	}

	return m, nil
}

// Valid reports whether m is part of the method enumeration.
func (m Method) Valid() bool {
	for _, k := range knownMethods {
		if m == k {
			return true
		}
	}

	return false
}

// Accepts reports whether a request with the given method passes the filter.
// Request methods are case-sensitive per RFC 9110 Section 9.1.
func (m Method) Accepts(method string) bool {
	return m == MethodAll || string(m) == method
}

func (m Method) String() string {
	return string(m)
}
