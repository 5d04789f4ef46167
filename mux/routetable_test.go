package mux

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTableRouter(t *testing.T) *Router {
	t.Helper()

	r := NewRouter()
	r.MustRegister(passThrough, MethodAll, "")
	_, err := r.RegisterNamed("user", passThrough, MethodGet, "/user/[id]")
	require.NoError(t, err)
	r.MustRegister(passThrough, MethodPost, `^/raw/(\d+)$`).Disable()

	return r
}

func TestRouteTable(t *testing.T) {
	table := newTableRouter(t).RouteTable()

	require.Len(t, table, 3)
	assert.Equal(t, RouteInfo{Index: 0, Method: "ALL", Pattern: CatchAll, Enabled: true}, table[0])
	assert.Equal(t, RouteInfo{
		Index:    1,
		Name:     "user",
		Method:   "GET",
		Template: "/user/[id]",
		Pattern:  "^/user/(.+)$",
		Params:   []string{"id"},
		Enabled:  true,
	}, table[1])
	assert.True(t, table[2].Raw)
	assert.False(t, table[2].Enabled)
}

func TestWriteRouteTable(t *testing.T) {
	r := newTableRouter(t)

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.WriteRouteTable(&buf, FormatYAML))

		var got []RouteInfo
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, r.RouteTable(), got)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.WriteRouteTable(&buf, FormatJSON))

		var got []RouteInfo
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, r.RouteTable(), got)
	})

	t.Run("unknown format", func(t *testing.T) {
		var buf bytes.Buffer
		err := r.WriteRouteTable(&buf, "toml")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "toml")
	})
}
