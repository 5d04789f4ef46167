package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/vine/mux"
)

// seen records what a later route observes about the request ID.
type seen struct {
	header   string
	property string
}

func requestIDRouter(cfg RequestIDConfig, out *seen) *mux.Router {
	r := mux.NewRouter()
	r.MustRegister(RequestID(cfg), mux.MethodAll, "")
	r.MustRegister(func(c *mux.Context) *mux.Context {
		out.header = c.Request.Header.Get(cfg.header())
		out.property = RequestIDFromContext(c)
		c.Response.WriteHeader(http.StatusNoContent)
		return c
	}, mux.MethodGet, "/")

	return r
}

func fixedID(id string) func(*mux.Request) string {
	return func(*mux.Request) string { return id }
}

func uuidVersion(t *testing.T, s string) uuid.Version {
	t.Helper()

	id, err := uuid.Parse(s)
	require.NoError(t, err)

	return id.Version()
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		cfg      RequestIDConfig
		incoming http.Header
		want     string // empty means a generated UUID v4
		header   string
	}{
		{name: "generated", header: "X-Request-ID"},
		{name: "incoming ignored", incoming: http.Header{"X-Request-Id": {"client"}}, header: "X-Request-ID"},
		{
			name:     "incoming trusted",
			cfg:      RequestIDConfig{TrustIncoming: true},
			incoming: http.Header{"X-Request-Id": {"client"}},
			want:     "client",
			header:   "X-Request-ID",
		},
		{name: "trusted but absent", cfg: RequestIDConfig{TrustIncoming: true}, header: "X-Request-ID"},
		{name: "custom generator", cfg: RequestIDConfig{GenerateFunc: fixedID("gen-1")}, want: "gen-1", header: "X-Request-ID"},
		{
			name:     "custom header",
			cfg:      RequestIDConfig{HeaderName: "X-Trace-ID", TrustIncoming: true},
			incoming: http.Header{"X-Trace-Id": {"trace-9"}, "X-Request-Id": {"other"}},
			want:     "trace-9",
			header:   "X-Trace-ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got seen

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.incoming {
				req.Header[k] = v
			}

			w := httptest.NewRecorder()
			requestIDRouter(tt.cfg, &got).ServeHTTP(w, req)

			id := w.Header().Get(tt.header)
			if tt.want == "" {
				assert.Equal(t, uuid.Version(4), uuidVersion(t, id))
				assert.NotEqual(t, "client", id)
			} else {
				assert.Equal(t, tt.want, id)
			}

			assert.Equal(t, id, got.header)
			assert.Equal(t, id, got.property)
		})
	}

	t.Run("unique per request", func(t *testing.T) {
		var got seen
		r := requestIDRouter(RequestIDConfig{}, &got)

		ids := make(map[string]struct{})
		for range 50 {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
			ids[got.property] = struct{}{}
		}

		assert.Len(t, ids, 50)
	})

	t.Run("generator sees the request", func(t *testing.T) {
		var got seen
		cfg := RequestIDConfig{GenerateFunc: func(r *mux.Request) string {
			return r.Method + ":" + r.Path
		}}

		requestIDRouter(cfg, &got).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "GET:/", got.property)
	})

	t.Run("empty generated id", func(t *testing.T) {
		var got seen
		w := httptest.NewRecorder()
		requestIDRouter(RequestIDConfig{GenerateFunc: fixedID("")}, &got).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotContains(t, w.Header(), "X-Request-Id")
		assert.Empty(t, got.property)
	})
}

func TestRequestIDAssign(t *testing.T) {
	t.Run("keeps assigned id", func(t *testing.T) {
		c := mux.NewContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)

		first := RequestIDConfig{}.Assign(c)
		second := RequestIDConfig{GenerateFunc: fixedID("other")}.Assign(c)

		assert.NotEmpty(t, first)
		assert.Equal(t, first, second)
	})

	t.Run("non string property", func(t *testing.T) {
		c := mux.NewContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
		c.Properties.Set(PropertyRequestID, 42)

		assert.Empty(t, RequestIDFromContext(c))
		assert.Equal(t, "fresh", RequestIDConfig{GenerateFunc: fixedID("fresh")}.Assign(c))
	})
}

func TestGenerateUUID(t *testing.T) {
	assert.Equal(t, uuid.Version(4), uuidVersion(t, GenerateUUIDv4(nil)))
	assert.Equal(t, uuid.Version(7), uuidVersion(t, GenerateUUIDv7(nil)))

	earlier := GenerateUUIDv7(nil)
	time.Sleep(2 * time.Millisecond)
	later := GenerateUUIDv7(nil)

	assert.Less(t, earlier, later)
}

func BenchmarkRequestID(b *testing.B) {
	for name, gen := range map[string]func(*mux.Request) string{
		"v4": GenerateUUIDv4,
		"v7": GenerateUUIDv7,
	} {
		b.Run(name, func(b *testing.B) {
			var got seen
			r := requestIDRouter(RequestIDConfig{GenerateFunc: gen}, &got)
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			for b.Loop() {
				r.ServeHTTP(httptest.NewRecorder(), req)
			}
		})
	}
}
