// Package loader contains utilties for caching the read and parse of a file by
// path.
package loader

import (
	"io/fs"

	"github.com/pkg/errors"
)

// Contents is the raw bytes of a file, and the parsed object associated with
// the raw bytes.
type Contents[T any] struct {
	Raw    []byte
	Parsed T
}

// Loader contains cached file contents, read from FS.
type Loader[T any] struct {
	FS    fs.FS
	cache map[string]*Contents[T]
}

// LoadFn defines how to turn bytes into an object when loading a file. The
// path is passed so the function can pick a format by extension.
type LoadFn[T any] func(path string, b []byte) (T, error)

// New returns a loader reading from fsys.
func New[T any](fsys fs.FS) *Loader[T] {
	return &Loader[T]{
		FS:    fsys,
		cache: make(map[string]*Contents[T]),
	}
}

// LoadPath reads the file at path, using the provided load function to create a
// parsed object. It will overwrite any existing file stored at that path in the
// loader.
func (l *Loader[T]) LoadPath(path string, f LoadFn[T]) (*Contents[T], error) {
	var err error
	contents := Contents[T]{}
	if contents.Raw, err = fs.ReadFile(l.FS, path); err != nil {
		return nil, err
	}
	if contents.Parsed, err = f(path, contents.Raw); err != nil {
		return nil, errors.Wrapf(err, "error in LoadFn for %q", path)
	}
	if l.cache == nil {
		l.cache = make(map[string]*Contents[T])
	}
	l.cache[path] = &contents
	return &contents, nil
}

// LoadOrGet loads the file at path if it is not already read.
func (l *Loader[T]) LoadOrGet(path string, f LoadFn[T]) (contents *Contents[T], created bool, err error) {
	existing, ok := l.cache[path]
	if ok {
		return existing, false, nil
	}
	c, err := l.LoadPath(path, f)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}
