package slice

import (
	"context"
	"fmt"
	"io"
	"slices"
)

// DefaultMaxDepth is the deepest layout chain a Composer accepts unless
// configured otherwise.
const DefaultMaxDepth = 16

// Composer wraps content units in their layout chains and renders the
// result. A Composer holds no per-render state and is safe for concurrent
// use.
type Composer struct {
	maxDepth int
}

// Option configures a Composer.
type Option func(*Composer)

// WithMaxDepth limits the number of layouts in a chain. Values below one are
// ignored.
func WithMaxDepth(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// NewComposer returns a Composer configured by opts.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

var defaultComposer = NewComposer()

// Render composes content with its layouts and renders it into w using the
// default Composer.
func Render(ctx context.Context, w io.Writer, content Unit) Completion {
	return defaultComposer.Render(ctx, w, content)
}

// Render composes content with its layouts and renders the outermost unit
// into w. Composition errors are reported before anything is written.
// Failures during rendering are returned as-is; whatever reached w before
// the failure stays there.
func (c *Composer) Render(ctx context.Context, w io.Writer, content Unit) Completion {
	outer, err := c.Compose(w, content)
	if err != nil {
		return Failed(err)
	}
	return outer.Render(ctx, w)
}

// Compose resolves the layout chain of content and returns the outermost
// unit, with every layout bound to render its inner unit and sections into
// w. Nothing is written to w.
func (c *Composer) Compose(w io.Writer, content Unit) (Unit, error) {
	var (
		cur   = content
		scope []*Sections
		chain []string
	)
	for {
		sections, err := collectSections(cur)
		if err != nil {
			return nil, &CompositionError{Op: "sections", Chain: slices.Clone(chain), Err: err}
		}
		scope = append(scope, sections)

		decl, ok := cur.(Declarer)
		if !ok {
			return cur, nil
		}
		def, model := decl.DeclareLayout()
		if def == nil {
			return cur, nil
		}

		name := def.Name()
		if slices.Contains(chain, name) {
			return nil, &CompositionError{Op: "layout", Chain: append(slices.Clone(chain), name), Err: ErrLayoutCycle}
		}
		if len(chain) >= c.maxDepth {
			return nil, &CompositionError{Op: "layout", Chain: append(slices.Clone(chain), name), Err: ErrLayoutDepth}
		}
		chain = append(chain, name)

		visible := scope[:len(scope):len(scope)]
		layout, err := def.New(model, bind(cur, w, visible))
		if err != nil {
			return nil, &CompositionError{Op: "layout", Chain: slices.Clone(chain), Err: err}
		}
		if layout == nil {
			return nil, &CompositionError{Op: "layout", Chain: slices.Clone(chain), Err: fmt.Errorf("slice: layout %q built a nil unit", name)}
		}

		if req, ok := layout.(SectionRequirer); ok {
			for _, section := range req.RequiredSections() {
				if _, found := lookup(visible, section); !found {
					return nil, &CompositionError{Op: "sections", Chain: slices.Clone(chain), Section: section, Err: ErrMissingSection}
				}
			}
		}

		cur = layout
	}
}

// collectSections runs the definer of u. A Define call that panics, such as
// one with an empty name, is reported as an error.
func collectSections(u Unit) (_ *Sections, err error) {
	definer, ok := u.(SectionDefiner)
	if !ok {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%w: %v", ErrRenderPanic, r)
		}
	}()

	s := &Sections{}
	definer.DefineSections(s)
	if s.Len() == 0 {
		return nil, nil
	}
	return s, nil
}

// bind wires a layout to inner. scope holds the registries of inner and of
// every unit below it, innermost last.
func bind(inner Unit, w io.Writer, scope []*Sections) Bindings {
	return Bindings{
		Content: func(ctx context.Context) Completion {
			return inner.Render(ctx, w)
		},
		Section: func(ctx context.Context, name string) Completion {
			if fn, ok := lookup(scope, name); ok {
				return fn(ctx, w)
			}
			return Done()
		},
		Defined: func(name string) bool {
			_, ok := lookup(scope, name)
			return ok
		},
	}
}

// lookup searches the nearest registry first.
func lookup(scope []*Sections, name string) (SectionFunc, bool) {
	for i := len(scope) - 1; i >= 0; i-- {
		if fn, ok := scope[i].TryGet(name); ok {
			return fn, true
		}
	}
	return nil, false
}
