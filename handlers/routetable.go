package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/vitalvas/vine/mux"
)

// ErrNoRouter is returned when RouteTable is given a nil router.
var ErrNoRouter = errors.New("route table: router must not be nil")

var routeTableContentTypes = map[string]string{
	mux.FormatYAML: "application/yaml",
	mux.FormatJSON: "application/json",
}

// RouteTable returns a handler that writes the route table of router in
// the given format and halts the chain. The "format" query parameter
// overrides the default format per request; an unknown value is answered
// with 400 Bad Request.
func RouteTable(router *mux.Router, format string) (mux.HandlerFunc, error) {
	if router == nil {
		return nil, ErrNoRouter
	}

	if format == "" {
		format = mux.FormatYAML
	}

	if _, ok := routeTableContentTypes[format]; !ok {
		return nil, fmt.Errorf("route table: unsupported format %q", format)
	}

	return func(c *mux.Context) *mux.Context {
		f := format
		if q := c.Request.Query().Get("format"); q != "" {
			f = q
		}

		contentType, ok := routeTableContentTypes[f]
		if !ok {
			c.Response.SendString(http.StatusBadRequest, fmt.Sprintf("unsupported format %q", f))
			return c.Halt()
		}

		var buf bytes.Buffer
		if err := router.WriteRouteTable(&buf, f); err != nil {
			return c.Fail(err)
		}

		c.Response.Header().Set("Content-Type", contentType)
		c.Response.WriteHeader(http.StatusOK)
		_, _ = c.Response.Write(buf.Bytes())

		return c.Halt()
	}, nil
}
