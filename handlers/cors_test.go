package handlers

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/vine/mux"
)

// corsRouter serves GET and PUT on /items behind CORS.
func corsRouter(t testing.TB, cfg CORSConfig) *mux.Router {
	t.Helper()

	r := mux.NewRouter()
	mw, err := CORS(r, cfg)
	require.NoError(t, err)

	r.MustRegister(mw, mux.MethodAll, "")
	r.MustRegister(func(c *mux.Context) *mux.Context {
		c.Response.Write([]byte("items"))
		return c
	}, mux.MethodGet, "/items")
	r.MustRegister(okHandler, mux.MethodPut, "/items")

	return r
}

func corsRequest(method, origin string, headers ...string) *http.Request {
	req := httptest.NewRequest(method, "/items", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	return req
}

func preflight(origin string, headers ...string) *http.Request {
	return corsRequest(http.MethodOptions, origin,
		append([]string{"Access-Control-Request-Method", "PUT"}, headers...)...)
}

func serveCORS(t testing.TB, cfg CORSConfig, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	corsRouter(t, cfg).ServeHTTP(w, req)

	return w
}

func TestCORSConfigErrors(t *testing.T) {
	t.Run("wildcard with credentials", func(t *testing.T) {
		_, err := CORS(nil, CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true})
		assert.ErrorIs(t, err, ErrWildcardCredentials)
	})

	t.Run("two wildcards", func(t *testing.T) {
		_, err := CORS(nil, CORSConfig{AllowedOrigins: []string{"https://*.*.example.com"}})
		assert.ErrorIs(t, err, ErrCORSOriginPattern)
	})

	t.Run("credentials with origin func", func(t *testing.T) {
		mw, err := CORS(nil, CORSConfig{
			AllowOriginFunc:  func(string) bool { return true },
			AllowCredentials: true,
		})
		require.NoError(t, err)
		assert.NotNil(t, mw)
	})
}

func TestCORSOrigins(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins: []string{"https://app.example.com", "HTTPS://Admin.Example.com", "https://*.cdn.example.net"},
		AllowOriginFunc: func(origin string) bool {
			return strings.HasSuffix(origin, ".internal")
		},
	}

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://app.example.com", true},
		{"https://APP.example.com", true},
		{"https://admin.example.com", true},
		{"https://img.cdn.example.net", true},
		{"https://a.b.cdn.example.net", true},
		{"https://cdn.example.net", false},
		{"http://app.example.com", false},
		{"https://evil.com", false},
		{"http://build.internal", true},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			w := serveCORS(t, cfg, corsRequest(http.MethodGet, tt.origin))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "items", w.Body.String())

			if !tt.allowed {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
				return
			}

			assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, []string{"Origin"}, w.Header().Values("Vary"))
			assert.Equal(t, "GET,PUT", w.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}

func TestCORSActualRequest(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		w := serveCORS(t, CORSConfig{AllowedOrigins: []string{"*"}}, corsRequest(http.MethodGet, "https://any.test"))

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Values("Vary"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("credentials and exposed headers", func(t *testing.T) {
		w := serveCORS(t, CORSConfig{
			AllowedOrigins:   []string{"https://app.test"},
			AllowCredentials: true,
			ExposeHeaders:    []string{"X-Total", "X-Page"},
		}, corsRequest(http.MethodGet, "https://app.test"))

		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "X-Total,X-Page", w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("configured methods", func(t *testing.T) {
		w := serveCORS(t, CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "DELETE"},
		}, corsRequest(http.MethodGet, "https://app.test"))

		assert.Equal(t, "GET,POST,DELETE", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("no origin", func(t *testing.T) {
		tests := []struct {
			name     string
			cfg      CORSConfig
			wantVary bool
		}{
			{"specific origins", CORSConfig{AllowedOrigins: []string{"https://app.test"}}, true},
			{"pattern", CORSConfig{AllowedOrigins: []string{"https://*.app.test"}}, true},
			{"origin func", CORSConfig{AllowOriginFunc: func(string) bool { return true }}, true},
			{"wildcard", CORSConfig{AllowedOrigins: []string{"*"}}, false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := serveCORS(t, tt.cfg, corsRequest(http.MethodGet, ""))

				assert.Equal(t, "items", w.Body.String())
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

				if tt.wantVary {
					assert.Equal(t, "Origin", w.Header().Get("Vary"))
				} else {
					assert.Empty(t, w.Header().Get("Vary"))
				}
			})
		}
	})

	t.Run("options without request method", func(t *testing.T) {
		r := corsRouter(t, CORSConfig{AllowedOrigins: []string{"*"}, MaxAge: 60})
		r.MustRegister(okHandler, mux.MethodOptions, "/items")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, corsRequest(http.MethodOptions, "https://app.test"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Max-Age"))
	})
}

func TestCORSPreflight(t *testing.T) {
	t.Run("answers and halts", func(t *testing.T) {
		w := serveCORS(t, CORSConfig{AllowedOrigins: []string{"https://app.test"}}, preflight("https://app.test"))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Equal(t, "https://app.test", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET,PUT", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t,
			[]string{"Origin", "Access-Control-Request-Method", "Access-Control-Request-Headers"},
			w.Header().Values("Vary"))
	})

	t.Run("disallowed origin", func(t *testing.T) {
		w := serveCORS(t, CORSConfig{AllowedOrigins: []string{"https://app.test"}}, preflight("https://evil.test"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("allowed headers", func(t *testing.T) {
		tests := []struct {
			name      string
			allowed   []string
			requested string
			want      string
		}{
			{"configured", []string{"Content-Type", "X-Token"}, "X-Other", "Content-Type,X-Token"},
			{"echo when empty", nil, "X-A, X-B", "X-A, X-B"},
			{"echo with star", []string{"*"}, "X-Custom", "X-Custom"},
			{"star without request", []string{"*"}, "", ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var extra []string
				if tt.requested != "" {
					extra = []string{"Access-Control-Request-Headers", tt.requested}
				}

				w := serveCORS(t, CORSConfig{AllowedOrigins: []string{"*"}, AllowedHeaders: tt.allowed},
					preflight("https://app.test", extra...))

				assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Headers"))
			})
		}
	})

	t.Run("max age", func(t *testing.T) {
		for maxAge, want := range map[int]string{600: "600", -1: "0", 0: ""} {
			w := serveCORS(t, CORSConfig{AllowedOrigins: []string{"*"}, MaxAge: maxAge}, preflight("https://app.test"))
			assert.Equal(t, want, w.Header().Get("Access-Control-Max-Age"), "max age %d", maxAge)
		}
	})

	t.Run("custom status", func(t *testing.T) {
		w := serveCORS(t, CORSConfig{AllowedOrigins: []string{"*"}, OptionsStatusCode: http.StatusOK},
			preflight("https://app.test"))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("passthrough", func(t *testing.T) {
		r := corsRouter(t, CORSConfig{AllowedOrigins: []string{"*"}, OptionsPassthrough: true})
		r.MustRegister(func(c *mux.Context) *mux.Context {
			c.Response.WriteHeader(http.StatusAccepted)
			return c
		}, mux.MethodOptions, "/items")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, preflight("https://app.test"))

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET,PUT,OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("private network", func(t *testing.T) {
		tests := []struct {
			name    string
			enabled bool
			request string
			want    string
		}{
			{"enabled", true, "true", "true"},
			{"disabled", false, "true", ""},
			{"not requested", true, "", ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var extra []string
				if tt.request != "" {
					extra = []string{"Access-Control-Request-Private-Network", tt.request}
				}

				w := serveCORS(t, CORSConfig{AllowedOrigins: []string{"*"}, AllowPrivateNetwork: tt.enabled},
					preflight("https://app.test", extra...))

				assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Private-Network"))
				assert.Equal(t, tt.want != "",
					slices.Contains(w.Header().Values("Vary"), "Access-Control-Request-Private-Network"))
			})
		}
	})
}

func BenchmarkCORS(b *testing.B) {
	r := corsRouter(b, CORSConfig{AllowedOrigins: []string{"https://app.test", "https://*.cdn.test"}})

	requests := map[string]*http.Request{
		"actual":    corsRequest(http.MethodGet, "https://img.cdn.test"),
		"preflight": preflight("https://app.test", "Access-Control-Request-Headers", "Content-Type"),
	}

	for name, req := range requests {
		b.Run(name, func(b *testing.B) {
			for b.Loop() {
				r.ServeHTTP(httptest.NewRecorder(), req)
			}
		})
	}
}
