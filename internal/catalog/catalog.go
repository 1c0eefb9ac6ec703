// Package catalog loads html/template views from a file system and turns
// them into slices that compose with their layouts.
//
// Every file whose base name matches the catalog pattern is a view, named by
// its slash-separated path. A view picks its layout and the sections its
// layout insists on with header comments, and defines sections as named
// blocks:
//
//	{{/* strata:layout layouts/base.html.tmpl */}}
//	{{define "section:title"}}Home{{end}}
//	<p>Hello {{.Model.name}}</p>
//
// Layouts are views too; they can have a layout of their own.
package catalog

import (
	"html/template"
	"io/fs"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/conneroisu/strata/internal/errors"
	"github.com/conneroisu/strata/pkg/slice"
)

// DefaultPattern matches view file names.
const DefaultPattern = "*.html.tmpl"

// Catalog holds the parsed views of one file system. Lookups are lock-free
// and see either the state before or after a Reload, never a mix.
type Catalog struct {
	fsys    fs.FS
	pattern string
	funcs   template.FuncMap

	mu    sync.Mutex // serializes Reload
	state atomic.Pointer[snapshot]
}

type snapshot struct {
	entries map[string]*entry
	layouts map[string]slice.LayoutDef
	names   []string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithPattern sets the glob matched against file base names.
func WithPattern(pattern string) Option {
	return func(c *Catalog) {
		if pattern != "" {
			c.pattern = pattern
		}
	}
}

// WithFuncs adds template functions. They override the built-in ones of the
// same name.
func WithFuncs(funcs template.FuncMap) Option {
	return func(c *Catalog) {
		maps.Copy(c.funcs, funcs)
	}
}

// New loads every view in fsys.
func New(fsys fs.FS, opts ...Option) (*Catalog, error) {
	c := &Catalog{fsys: fsys, pattern: DefaultPattern, funcs: Funcs()}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload parses the file system again. On failure the catalog keeps serving
// the views it had.
func (c *Catalog) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := load(c.fsys, c.pattern, c.funcs)
	if err != nil {
		return err
	}

	s := &snapshot{
		entries: entries,
		layouts: make(map[string]slice.LayoutDef, len(entries)),
		names:   slices.Sorted(maps.Keys(entries)),
	}
	for name, e := range entries {
		s.layouts[name] = s.layoutDef(e)
	}
	c.state.Store(s)
	return nil
}

// Names returns the names of all views, sorted.
func (c *Catalog) Names() []string {
	return slices.Clone(c.state.Load().names)
}

// Has reports whether name is a view.
func (c *Catalog) Has(name string) bool {
	_, ok := c.state.Load().entries[name]
	return ok
}

// View returns a unit rendering the view name with model. The unit belongs to
// a single render.
func (c *Catalog) View(name string, model any) (slice.Unit, error) {
	s := c.state.Load()
	e, ok := s.entries[name]
	if !ok {
		return nil, errors.ViewNotFound(name, s.names)
	}
	return &unit{entry: e, snap: s, view: View{Model: model, Name: name}}, nil
}

// Info describes a view.
type Info struct {
	Name     string   `json:"name" yaml:"name"`
	Layout   string   `json:"layout,omitempty" yaml:"layout,omitempty"`
	Chain    []string `json:"chain,omitempty" yaml:"chain,omitempty"`
	Sections []string `json:"sections,omitempty" yaml:"sections,omitempty"`
	Required []string `json:"required,omitempty" yaml:"required,omitempty"`
}

// Info returns the layout chain and sections of name. Chain lists the
// layouts outward from the view.
func (c *Catalog) Info(name string) (Info, error) {
	s := c.state.Load()
	e, ok := s.entries[name]
	if !ok {
		return Info{}, errors.ViewNotFound(name, s.names)
	}
	return s.info(e), nil
}

// Infos returns the Info of every view, sorted by name.
func (c *Catalog) Infos() []Info {
	s := c.state.Load()
	out := make([]Info, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.info(s.entries[name]))
	}
	return out
}

func (s *snapshot) info(e *entry) Info {
	info := Info{
		Name:     e.name,
		Layout:   e.layout,
		Sections: slices.Clone(e.sections),
		Required: slices.Clone(e.required),
	}
	for cur := e.layout; cur != ""; cur = s.entries[cur].layout {
		info.Chain = append(info.Chain, cur)
	}
	return info
}
