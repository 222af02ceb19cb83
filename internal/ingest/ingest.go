// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest reads and writes bibliographic record files. Each file
// format is a Source registered by name and file extension; the CLI picks
// one explicitly or by path.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pdiddy/paper-dedup/pkg/types"
)

// ErrUnknownFormat is returned when no registered source matches a format
// name or file extension.
var ErrUnknownFormat = errors.New("unknown record format")

// Source reads one record file format.
type Source interface {
	// Name is the format name used on the command line ("json", "yaml", "csl").
	Name() string

	// Extensions lists lowercase file extensions, with the dot, this source reads.
	Extensions() []string

	// Read parses every record in r.
	Read(r io.Reader) ([]types.Paper, error)
}

// Registry maps format names and file extensions to sources.
type Registry struct {
	byName map[string]Source
	byExt  map[string]Source
	names  []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Source),
		byExt:  make(map[string]Source),
	}
}

// DefaultRegistry returns a registry with the json, yaml and csl sources.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range []Source{JSONSource{}, YAMLSource{}, CSLSource{}} {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds s. Names must be unique; the first source registered for an
// extension keeps it.
func (r *Registry) Register(s Source) error {
	name := strings.ToLower(s.Name())
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("source %q already registered", name)
	}
	r.byName[name] = s
	r.names = append(r.names, name)
	for _, ext := range s.Extensions() {
		ext = strings.ToLower(ext)
		if _, ok := r.byExt[ext]; !ok {
			r.byExt[ext] = s
		}
	}
	return nil
}

// Names returns the registered format names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Lookup returns the source registered under name.
func (r *Registry) Lookup(name string) (Source, error) {
	s, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownFormat, name, strings.Join(r.names, ", "))
	}
	return s, nil
}

// ForPath returns the source for path's extension. CSL files are commonly
// named "*.csl.yaml", so the double extension is checked first.
func (r *Registry) ForPath(path string) (Source, error) {
	base := strings.ToLower(filepath.Base(path))
	if i := strings.Index(base, "."); i >= 0 {
		if s, ok := r.byExt[base[i:]]; ok {
			return s, nil
		}
	}
	if s, ok := r.byExt[filepath.Ext(base)]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: cannot infer format of %s", ErrUnknownFormat, path)
}

// LoadFiles reads every path and concatenates the records in path order.
// An empty format infers each file's format from its extension.
func LoadFiles(r *Registry, format string, paths ...string) ([]types.Paper, error) {
	var fixed Source
	if format != "" {
		s, err := r.Lookup(format)
		if err != nil {
			return nil, err
		}
		fixed = s
	}

	var out []types.Paper
	for _, p := range paths {
		src := fixed
		if src == nil {
			s, err := r.ForPath(p)
			if err != nil {
				return nil, err
			}
			src = s
		}
		papers, err := readFile(src, p)
		if err != nil {
			return nil, err
		}
		out = append(out, papers...)
	}
	return out, nil
}

func readFile(src Source, path string) ([]types.Paper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	papers, err := src.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s as %s: %w", path, src.Name(), err)
	}
	return papers, nil
}
