package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/vitalvas/vine/mux"
)

var (
	ErrStaticFilesNoFS        = errors.New("static files: file system must not be nil")
	ErrStaticFilesNoIndexHTML = errors.New("static files: index.html is required when SPA fallback is enabled")
)

// StaticFilesConfig configures StaticFiles.
type StaticFilesConfig struct {
	// FS holds the served files, for example os.DirFS or an embed.FS.
	FS fs.FS

	// EnableDirectoryListing lists directories without an index.html.
	EnableDirectoryListing bool

	// SPAFallback answers unknown paths with the root index.html, which
	// must exist. No GET or HEAD request passes the handler then, so
	// register it last.
	SPAFallback bool
}

// staticFS is the view of the configured file system handed to the file
// server.
type staticFS struct {
	fsys    fs.FS
	listing bool
	spa     bool
}

func (s staticFS) Open(name string) (fs.File, error) {
	f, err := s.open(name)
	if s.spa && errors.Is(err, fs.ErrNotExist) {
		return s.fsys.Open("index.html")
	}

	return f, err
}

// open hides directories without an index.html unless listing is enabled.
func (s staticFS) open(name string) (fs.File, error) {
	f, err := s.fsys.Open(name)
	if err != nil || s.listing {
		return f, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if info.IsDir() {
		if _, err := fs.Stat(s.fsys, path.Join(name, "index.html")); err != nil {
			f.Close()
			return nil, fs.ErrNotExist
		}
	}

	return f, nil
}

// has reports whether the request path resolves to something servable.
func (s staticFS) has(urlPath string) bool {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		name = "."
	}

	f, err := s.Open(name)
	if err != nil {
		return false
	}

	f.Close()

	return true
}

// StaticFiles returns a handler that serves GET and HEAD requests for
// existing files and halts. Other requests continue down the chain.
func StaticFiles(cfg StaticFilesConfig) (mux.HandlerFunc, error) {
	if cfg.FS == nil {
		return nil, ErrStaticFilesNoFS
	}

	if cfg.SPAFallback {
		if _, err := fs.Stat(cfg.FS, "index.html"); err != nil {
			return nil, ErrStaticFilesNoIndexHTML
		}
	}

	files := staticFS{
		fsys:    cfg.FS,
		listing: cfg.EnableDirectoryListing,
		spa:     cfg.SPAFallback,
	}
	fileServer := http.FileServerFS(files)

	return func(c *mux.Context) *mux.Context {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead:
		default:
			return c
		}

		if !files.has(c.Request.Path) {
			return c
		}

		fileServer.ServeHTTP(c.Response, c.Request.Raw)

		return c.Halt()
	}, nil
}
