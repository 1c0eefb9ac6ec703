// Package templslice adapts a-h/templ components to slices and back.
//
// Content written as templ components becomes a slice.Unit through Page, and
// layouts written as templ components receive the wrapped body as their
// children:
//
//	var Site = templslice.DefineLayout("site", func(l *templslice.Layout[SiteModel]) templ.Component {
//		return siteLayout(l.Model.Title, l.Section("scripts")) // { children... } renders the body
//	})
//
//	page := templslice.NewPage(home(), templslice.WithLayout(Site, SiteModel{Title: "Home"}),
//		templslice.WithSection("scripts", homeScripts()))
//	err := slice.Render(ctx, w, page).Wait(ctx)
package templslice

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/conneroisu/strata/pkg/slice"
)

// FromComponent returns a unit that renders c.
func FromComponent(c templ.Component) slice.Unit {
	return slice.UnitFunc(func(ctx context.Context, w io.Writer) slice.Completion {
		return slice.Failed(c.Render(ctx, w))
	})
}

// Component returns a templ component that composes u with its layouts and
// renders it, so that a slice can be used from templ code.
func Component(u slice.Unit) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return finish(ctx, slice.Render(ctx, w, u))
	})
}

// finish blocks until c is done. templ components write synchronously, so
// returning before c settles would let the sink see interleaved writes.
func finish(ctx context.Context, c slice.Completion) error {
	return c.Wait(context.WithoutCancel(ctx))
}

// Handler serves u through templ's HTTP handler.
func Handler(u slice.Unit, opts ...func(*templ.ComponentHandler)) *templ.ComponentHandler {
	return templ.Handler(Component(u), opts...)
}

// Page is a content unit built from templ components.
type Page struct {
	content  templ.Component
	sections map[string]templ.Component
	layout   slice.LayoutDef
	model    any
}

// PageOption configures a Page.
type PageOption func(*Page)

// WithLayout wraps the page in def, constructed with model.
func WithLayout(def slice.LayoutDef, model any) PageOption {
	return func(p *Page) {
		p.layout = def
		p.model = model
	}
}

// WithSection defines the section name as c.
func WithSection(name string, c templ.Component) PageOption {
	return func(p *Page) {
		if p.sections == nil {
			p.sections = make(map[string]templ.Component)
		}
		p.sections[name] = c
	}
}

// NewPage returns a page whose body is content.
func NewPage(content templ.Component, opts ...PageOption) *Page {
	p := &Page{content: content}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Page) Render(ctx context.Context, w io.Writer) slice.Completion {
	if p.content == nil {
		return slice.Done()
	}
	return slice.Failed(p.content.Render(ctx, w))
}

func (p *Page) DefineSections(s *slice.Sections) {
	for name, c := range p.sections {
		s.Define(name, func(ctx context.Context, w io.Writer) slice.Completion {
			return slice.Failed(c.Render(ctx, w))
		})
	}
}

func (p *Page) DeclareLayout() (slice.LayoutDef, any) {
	return p.layout, p.model
}

// Body returns a component that renders the body of l.
//
// The body is written to the sink the layout was composed with, not to the
// writer templ passes in, so anything templ buffered so far is flushed first.
func Body[M any](l *slice.Layout[M]) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := flush(w); err != nil {
			return err
		}
		return finish(ctx, l.RenderBody(templ.ClearChildren(ctx)))
	})
}

// Section returns a component that renders the section name of l. Like
// Body, it flushes w before writing.
func Section[M any](l *slice.Layout[M], name string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := flush(w); err != nil {
			return err
		}
		return finish(ctx, l.RenderSection(templ.ClearChildren(ctx), name))
	})
}

type flusher interface {
	Flush() error
}

func flush(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Layout is handed to templ layout builders.
type Layout[M any] struct {
	slice.Layout[M]
	view     templ.Component
	outer    slice.LayoutDef
	outerM   any
	required []string
}

// Body returns the wrapped content as a component.
func (l *Layout[M]) Body() templ.Component {
	return Body(&l.Layout)
}

// Section returns the named section as a component.
func (l *Layout[M]) Section(name string) templ.Component {
	return Section(&l.Layout, name)
}

// Defined reports whether the wrapped units defined name.
func (l *Layout[M]) Defined(name string) bool {
	return l.IsSectionDefined(name)
}

// Wrap places this layout inside def, constructed with model.
func (l *Layout[M]) Wrap(def slice.LayoutDef, model any) {
	l.outer = def
	l.outerM = model
}

// Require makes composition fail unless every name is defined below this
// layout.
func (l *Layout[M]) Require(names ...string) {
	l.required = append(l.required, names...)
}

func (l *Layout[M]) Render(ctx context.Context, w io.Writer) slice.Completion {
	if l.view == nil {
		return slice.Done()
	}
	return slice.Failed(l.view.Render(templ.WithChildren(ctx, l.Body()), w))
}

func (l *Layout[M]) DeclareLayout() (slice.LayoutDef, any) {
	return l.outer, l.outerM
}

func (l *Layout[M]) RequiredSections() []string {
	return l.required
}

// DefineLayout returns a layout definition rendered by the component build
// returns. Inside that component, templ children render the body.
func DefineLayout[M any](name string, build func(l *Layout[M]) templ.Component) slice.LayoutDef {
	return slice.DefineLayout(name, func(model M, b slice.Bindings) slice.Unit {
		l := &Layout[M]{Layout: slice.NewLayout(model, b)}
		l.view = build(l)
		return l
	})
}
