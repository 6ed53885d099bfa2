// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package site resolves request routes to files under a base directory.
package site

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a route names no readable file.
var ErrNotFound = errors.New("file not found")

// File is a resolved static file.
type File struct {
	Path        string
	ContentType string
	Body        []byte
}

// Site serves files from a base directory.
type Site struct {
	base  string
	index string
}

// New creates a site rooted at opts.BasePath.
func New(opts *Options) (*Site, error) {
	base, err := filepath.Abs(opts.BasePath)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve base path %q", opts.BasePath)
	}

	return &Site{base: base, index: opts.Index}, nil
}

// BasePath returns the absolute base directory.
func (s *Site) BasePath() string {
	return s.base
}

// IsIndexRoute reports whether route is served by the index document.
func IsIndexRoute(route string) bool {
	switch stripQuery(route) {
	case "/", "/index", "/index.html":
		return true
	}

	return false
}

// Index reads the index document and injects the reload script pointing
// at host.
func (s *Site) Index(host string) (*File, error) {
	f, err := s.read(filepath.Join(s.base, filepath.FromSlash(path.Clean("/"+s.index))))
	if err != nil {
		return nil, err
	}
	f.ContentType = "text/html"
	f.Body = InjectScript(f.Body, host)

	return f, nil
}

// Lookup resolves route to a file under the base directory. A directory
// resolves to its index document, served as is.
func (s *Site) Lookup(route string) (*File, error) {
	return s.read(s.resolve(route))
}

// resolve maps route to a path that cannot leave the base directory.
func (s *Site) resolve(route string) string {
	cleaned := path.Clean("/" + stripQuery(route))

	return filepath.Join(s.base, filepath.FromSlash(cleaned))
}

func (s *Site) read(name string) (*File, error) {
	info, err := os.Stat(name)
	if err != nil {
		return nil, notFoundOr(err, name)
	}
	if info.IsDir() {
		name = filepath.Join(name, filepath.FromSlash(path.Clean("/"+s.index)))
	}

	body, err := os.ReadFile(name)
	if err != nil {
		return nil, notFoundOr(err, name)
	}

	return &File{
		Path:        name,
		ContentType: ContentType(name),
		Body:        body,
	}, nil
}

func notFoundOr(err error, name string) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return errors.Wrap(ErrNotFound, name)
	}

	return errors.Wrapf(err, "read %s", name)
}

func stripQuery(route string) string {
	route, _, _ = strings.Cut(route, "?")
	route, _, _ = strings.Cut(route, "#")

	return route
}

// ContentType maps a file name to the Content-Type it is served with.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return "text/html"
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "text/plain"
	}
}
