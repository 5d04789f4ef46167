package mux

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passThrough(c *Context) *Context { return c }

func TestNewRoute(t *testing.T) {
	t.Run("defaults to all methods", func(t *testing.T) {
		route, err := newRoute(passThrough, "", "/x")

		require.NoError(t, err)
		assert.Equal(t, MethodAll, route.Method())
		assert.Equal(t, "/x", route.Template())
		assert.True(t, route.Enabled())
		assert.NotNil(t, route.Handler())
	})

	t.Run("nil handler", func(t *testing.T) {
		_, err := newRoute(nil, MethodGet, "/x")

		assert.ErrorIs(t, err, ErrInvalidRoute)
		assert.Contains(t, err.Error(), "handler must not be nil")
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := newRoute(passThrough, Method("BREW"), "/x")

		assert.ErrorIs(t, err, ErrInvalidRoute)
		assert.Contains(t, err.Error(), "BREW")
	})

	t.Run("duplicate placeholder", func(t *testing.T) {
		_, err := newRoute(passThrough, MethodGet, "/[id]/[id]")

		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Reason, `duplicated placeholder "id"`)
	})

	t.Run("keeps placeholder names", func(t *testing.T) {
		route, err := newRoute(passThrough, MethodGet, "/user/[id]/[action]")

		require.NoError(t, err)
		assert.Equal(t, []string{"id", "action"}, route.ParamNames())
		assert.Equal(t, "^/user/(.+)/(.+)$", route.Pattern().String())
	})
}

func TestRouteMatches(t *testing.T) {
	tests := []struct {
		name     string
		method   Method
		template string
		reqVerb  string
		reqPath  string
		expected bool
	}{
		{name: "all matches get", method: MethodAll, template: "/a", reqVerb: http.MethodGet, reqPath: "/a", expected: true},
		{name: "all matches custom verb", method: MethodAll, template: "/a", reqVerb: "PROPFIND", reqPath: "/a", expected: true},
		{name: "method mismatch", method: MethodPost, template: "/a", reqVerb: http.MethodGet, reqPath: "/a", expected: false},
		{name: "path mismatch", method: MethodGet, template: "/a", reqVerb: http.MethodGet, reqPath: "/b", expected: false},
		{name: "partial path", method: MethodGet, template: "/a", reqVerb: http.MethodGet, reqPath: "/a/b", expected: false},
		{name: "placeholder", method: MethodGet, template: "/a/[id]", reqVerb: http.MethodGet, reqPath: "/a/1", expected: true},
		{name: "catch-all", method: MethodAll, template: "", reqVerb: http.MethodDelete, reqPath: "/any/thing", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, err := newRoute(passThrough, tt.method, tt.template)
			require.NoError(t, err)

			c, _ := newTestContext(tt.reqVerb, tt.reqPath, "")
			assert.Equal(t, tt.expected, route.Matches(c))
		})
	}
}

func TestRouteEnableDisable(t *testing.T) {
	route, err := newRoute(passThrough, MethodGet, "/a")
	require.NoError(t, err)

	c, _ := newTestContext(http.MethodGet, "/a", "")

	route.Disable()
	assert.False(t, route.Enabled())
	assert.False(t, route.Matches(c))

	route.Enable()
	assert.True(t, route.Enabled())
	assert.True(t, route.Matches(c))
}

func TestRouteInvoke(t *testing.T) {
	t.Run("stores params and calls handler", func(t *testing.T) {
		var seen map[string]string
		route, err := newRoute(func(c *Context) *Context {
			seen = c.Request.Params
			c.Properties.Set("invoked", true)
			return c
		}, MethodGet, "/user/[id]/[action]")
		require.NoError(t, err)

		c, _ := newTestContext(http.MethodGet, "/user/9/show", "")
		out := route.Invoke(c)

		assert.Same(t, c, out)
		assert.Equal(t, map[string]string{"id": "9", "action": "show"}, seen)
		assert.True(t, out.Properties.Has("invoked"))
		assert.Same(t, route, out.CurrentRoute())
	})

	t.Run("handler may return a new context", func(t *testing.T) {
		replacement, _ := newTestContext(http.MethodGet, "/other", "")
		route, err := newRoute(func(*Context) *Context { return replacement }, MethodAll, "")
		require.NoError(t, err)

		c, _ := newTestContext(http.MethodGet, "/", "")

		assert.Same(t, replacement, route.Invoke(c))
	})
}
