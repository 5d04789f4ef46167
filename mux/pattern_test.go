package mux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	t.Run("placeholders become capture groups", func(t *testing.T) {
		p, params := Compile("/path/[a]/[b]")

		require.NotNil(t, p)
		assert.Equal(t, "^/path/(.+)/(.+)$", p.String())
		assert.Equal(t, []string{"a", "b"}, params)
		assert.False(t, p.IsRaw())
		assert.Equal(t, "/path/[a]/[b]", p.Template())
	})

	t.Run("raw regexp is kept verbatim", func(t *testing.T) {
		p, params := Compile(`^/path/(\d+)/(.+)$`)

		assert.Equal(t, `^/path/(\d+)/(.+)$`, p.String())
		assert.Empty(t, params)
		assert.True(t, p.IsRaw())
		assert.True(t, p.MatchString("/path/12/x"))
		assert.False(t, p.MatchString("/path/ab/x"))
	})

	t.Run("empty template is a catch-all", func(t *testing.T) {
		p, params := Compile("")

		assert.Equal(t, CatchAll, p.String())
		assert.Equal(t, "^.*$", p.String())
		assert.Empty(t, params)
		for _, path := range []string{"", "/", "/a/b/c", "/with space"} {
			assert.True(t, p.MatchString(path), path)
		}
	})

	t.Run("same template compiles to the same behavior", func(t *testing.T) {
		a, _ := Compile("/users/[id]")
		b, _ := Compile("/users/[id]")

		assert.Equal(t, a.String(), b.String())
		for _, path := range []string{"/users/1", "/users/", "/users/1/2", "/posts/1"} {
			assert.Equal(t, a.MatchString(path), b.MatchString(path), path)
		}
	})
}

func TestCompileLiteral(t *testing.T) {
	tests := []struct {
		name     string
		template string
		accept   string
		reject   []string
	}{
		{name: "root", template: "/", accept: "/", reject: []string{"", "/a", "//"}},
		{name: "segment", template: "/users", accept: "/users", reject: []string{"/users/", "/user", "/usersx", "x/users"}},
		{name: "nested", template: "/a/b/c", accept: "/a/b/c", reject: []string{"/a/b", "/a/b/c/d", "/a/bxc"}},
		{name: "special chars", template: "/a?b", accept: "/a?b", reject: []string{"/ab", "/b"}},
		{name: "malformed bracket", template: "/a[b", accept: "/a[b", reject: []string{"/ab", "/a["}},
		{name: "empty brackets", template: "/list[]", accept: "/list[]", reject: []string{"/list", "/list[x]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, params := Compile(tt.template)

			assert.False(t, p.IsRaw())
			assert.Empty(t, params)
			assert.True(t, p.MatchString(tt.accept))
			for _, path := range tt.reject {
				assert.False(t, p.MatchString(path), path)
			}
		})
	}
}

func TestCompileRawDetection(t *testing.T) {
	tests := []struct {
		template string
		raw      bool
	}{
		{template: "^/a", raw: true},
		{template: `/a\d`, raw: true},
		{template: "/a(b)", raw: true},
		{template: "/a$", raw: true},
		{template: "/a+", raw: true},
		{template: "/file.txt", raw: true},
		{template: "/a*", raw: true},
		{template: "/a/[id]", raw: false},
		{template: "/a/[id]/[name]", raw: false},
		{template: "/a-b_c~d", raw: false},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			p, _ := Compile(tt.template)
			assert.Equal(t, tt.raw, p.IsRaw())
		})
	}
}

func TestPatternMatchString(t *testing.T) {
	t.Run("unanchored raw regexp matches whole path", func(t *testing.T) {
		p, _ := Compile(`/api/.*`)

		assert.True(t, p.MatchString("/api/users"))
		assert.False(t, p.MatchString("/v1/api/users"))
	})

	t.Run("invalid raw regexp matches itself literally", func(t *testing.T) {
		p, params := Compile(`/broken(`)

		assert.True(t, p.IsRaw())
		assert.Equal(t, `/broken(`, p.String())
		assert.Empty(t, params)
		assert.True(t, p.MatchString("/broken("))
		assert.False(t, p.MatchString("/broken"))
	})

	t.Run("placeholder needs at least one character", func(t *testing.T) {
		p, _ := Compile("/users/[id]")

		assert.True(t, p.MatchString("/users/1"))
		assert.False(t, p.MatchString("/users/"))
	})
}

func TestPatternParams(t *testing.T) {
	t.Run("extracts values in order", func(t *testing.T) {
		p, _ := Compile("/user/[id]/[action]")

		assert.Equal(t, map[string]string{"id": "7", "action": "edit"}, p.Params("/user/7/edit"))
	})

	t.Run("nil when path does not match", func(t *testing.T) {
		p, _ := Compile("/user/[id]")

		assert.Nil(t, p.Params("/post/7"))
	})

	t.Run("nil for raw patterns", func(t *testing.T) {
		p, _ := Compile(`^/user/(\d+)$`)

		assert.Nil(t, p.Params("/user/7"))
	})

	t.Run("param names are a copy", func(t *testing.T) {
		p, _ := Compile("/[a]")

		names := p.ParamNames()
		names[0] = "changed"

		assert.Equal(t, []string{"a"}, p.ParamNames())
	})
}

// --- Benchmarks ---

func BenchmarkCompile(b *testing.B) {
	for b.Loop() {
		Compile("/user/[id]/[action]")
	}
}

func BenchmarkPatternMatch(b *testing.B) {
	p, _ := Compile("/user/[id]/[action]")

	for b.Loop() {
		p.MatchString("/user/42/edit")
	}
}
