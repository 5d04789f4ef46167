package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/vitalvas/vine/mux"
	"golang.org/x/crypto/bcrypt"
)

// ErrNoAuthSource is returned when BasicAuthConfig has neither ValidateFunc
// nor Credentials configured.
var ErrNoAuthSource = errors.New("basic auth: at least one of ValidateFunc or Credentials must be set")

// PropertyUser is the property key holding the authenticated user name.
const PropertyUser = "User"

// dummyHash is compared against when a username is unknown so that the
// bcrypt cost is paid either way.
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("vine"), bcrypt.DefaultCost)
	return hash
})

// BasicAuthConfig configures BasicAuth (RFC 7617).
type BasicAuthConfig struct {
	// Realm is the authentication realm sent in the WWW-Authenticate header.
	// Defaults to "Restricted" when empty.
	Realm string

	// ValidateFunc is called to validate credentials dynamically.
	// Takes priority over Credentials when both are set.
	ValidateFunc func(username, password string) bool

	// Credentials is a static map of username -> password pairs. A value
	// starting with $2a$, $2b$ or $2y$ is a bcrypt hash and is checked with
	// bcrypt. Other values are compared as plain text using SHA-256 hashed
	// constant-time comparison.
	Credentials map[string]string
}

// BasicAuth returns a handler that implements HTTP Basic Authentication per
// RFC 7617. It halts the chain with 401 Unauthorized when credentials are
// missing or invalid, and stores the user name under PropertyUser otherwise.
//
// It returns ErrNoAuthSource if both ValidateFunc and Credentials are nil/empty.
func BasicAuth(cfg BasicAuthConfig) (mux.HandlerFunc, error) {
	if cfg.ValidateFunc == nil && len(cfg.Credentials) == 0 {
		return nil, ErrNoAuthSource
	}

	realm := cfg.Realm
	if realm == "" {
		realm = "Restricted"
	}

	wwwAuthenticate := fmt.Sprintf("Basic realm=%q", realm)

	validate := cfg.ValidateFunc
	if validate == nil {
		credentials := make(map[string]string, len(cfg.Credentials))
		for user, pass := range cfg.Credentials {
			credentials[user] = pass
		}
		validate = func(username, password string) bool {
			return checkCredentials(credentials, username, password)
		}
	}

	return func(c *mux.Context) *mux.Context {
		if c.Request.Raw == nil {
			return unauthorized(c, wwwAuthenticate)
		}

		username, password, ok := c.Request.Raw.BasicAuth()
		if !ok || !validate(username, password) {
			c.Logger().Debug("basic auth rejected", "user", username, "remote", c.Request.RemoteAddr)
			return unauthorized(c, wwwAuthenticate)
		}

		c.Properties.Set(PropertyUser, username)

		return c
	}, nil
}

func checkCredentials(credentials map[string]string, username, password string) bool {
	expected, exists := credentials[username]

	// Always perform the password comparison to prevent timing leaks that
	// reveal whether a username exists in the map.
	if !exists {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return false
	}

	if isBcryptHash(expected) {
		return bcrypt.CompareHashAndPassword([]byte(expected), []byte(password)) == nil
	}

	return constantTimeEqual(password, expected)
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// constantTimeEqual compares two strings in constant time by first hashing
// them with SHA-256. This prevents both value leaks and length-based timing
// leaks that raw ConstantTimeCompare would allow on different-length inputs.
func constantTimeEqual(a, b string) bool {
	aHash := sha256.Sum256([]byte(a))
	bHash := sha256.Sum256([]byte(b))

	return subtle.ConstantTimeCompare(aHash[:], bHash[:]) == 1
}

// unauthorized writes a 401 response with the WWW-Authenticate header and
// an empty body, then halts the chain.
func unauthorized(c *mux.Context, wwwAuthenticate string) *mux.Context {
	c.Response.Header().Set("WWW-Authenticate", wwwAuthenticate)
	c.Response.WriteHeader(http.StatusUnauthorized)

	return c.Halt()
}
