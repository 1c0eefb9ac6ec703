package slice

import (
	"context"
	"fmt"
	"reflect"
)

// ContentRenderer renders the unit wrapped by a layout into the shared sink.
type ContentRenderer func(ctx context.Context) Completion

// SectionContentRenderer renders a named section into the shared sink, or
// nothing if the section was never defined.
type SectionContentRenderer func(ctx context.Context, name string) Completion

// Bindings connects a layout to the content it wraps. They are supplied by
// the Composer when it constructs the layout for one render.
type Bindings struct {
	Content ContentRenderer
	Section SectionContentRenderer
	Defined func(name string) bool
}

// Layout is embedded by layout units. The zero value is a standalone layout
// whose body and sections render nothing.
type Layout[M any] struct {
	Slice[M]
	bindings Bindings
}

// NewLayout returns a Layout bound to model and b.
func NewLayout[M any](model M, b Bindings) Layout[M] {
	return Layout[M]{Slice: Slice[M]{Model: model}, bindings: b}
}

// RenderBody renders the wrapped content at the current position of the
// layout. Without a content renderer it renders nothing.
//
// When the content finishes inline the result is returned without
// allocating; otherwise the pending completion is handed back for the layout
// to wait on before it continues.
func (l *Layout[M]) RenderBody(ctx context.Context) Completion {
	if l.bindings.Content == nil {
		return Done()
	}
	c := l.bindings.Content(ctx)
	if done, err := Inline(c); done {
		return settle(err)
	}
	return c
}

// RenderSection renders the section called name at the current position of
// the layout. An empty name fails immediately with ErrEmptySectionName.
// Undefined sections render nothing. Rendering a section twice writes it
// twice.
func (l *Layout[M]) RenderSection(ctx context.Context, name string) Completion {
	if name == "" {
		return Failed(ErrEmptySectionName)
	}
	if l.bindings.Section == nil {
		return Done()
	}
	c := l.bindings.Section(ctx, name)
	if done, err := Inline(c); done {
		return settle(err)
	}
	return c
}

// IsSectionDefined reports whether the wrapped units defined name.
func (l *Layout[M]) IsSectionDefined(name string) bool {
	if name == "" || l.bindings.Defined == nil {
		return false
	}
	return l.bindings.Defined(name)
}

// Body returns a Step that renders the body, for use with Run.
func (l *Layout[M]) Body() Step {
	return l.RenderBody
}

// Section returns a Step that renders the named section, for use with Run.
func (l *Layout[M]) Section(name string) Step {
	return func(ctx context.Context) Completion {
		return l.RenderSection(ctx, name)
	}
}

// LayoutDef constructs layout units for a render.
type LayoutDef interface {
	// Name identifies the layout. Names must be unique within a chain.
	Name() string
	// New builds a layout for model, wired to b.
	New(model any, b Bindings) (Unit, error)
}

type layoutDef[M any] struct {
	name  string
	build func(model M, b Bindings) Unit
}

// DefineLayout returns a LayoutDef whose layouts take a model of type M. A
// nil model is passed to build as the zero M; any other value of the wrong
// type fails with ErrModelType.
func DefineLayout[M any](name string, build func(model M, b Bindings) Unit) LayoutDef {
	return &layoutDef[M]{name: name, build: build}
}

func (d *layoutDef[M]) Name() string {
	return d.name
}

func (d *layoutDef[M]) New(model any, b Bindings) (Unit, error) {
	var m M
	if model != nil {
		typed, ok := model.(M)
		if !ok {
			return nil, fmt.Errorf("%w: layout %q takes %s, got %T",
				ErrModelType, d.name, reflect.TypeFor[M](), model)
		}
		m = typed
	}
	return d.build(m, b), nil
}
