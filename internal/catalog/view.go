package catalog

import (
	"context"
	"html/template"
	"io"

	"github.com/conneroisu/strata/pkg/slice"
)

// View is the data a template executes with. Templates reach the model
// through .Model, and layouts place the wrapped content with
//
//	{{.Body}}
//	{{.Section "scripts"}}
//	{{if .Defined "sidebar"}}<aside>{{.Section "sidebar"}}</aside>{{end}}
//
// Body and Section write straight to the render's sink and return an empty
// template.JS, so their output lands exactly where the action sits. Empty
// JS prints as nothing in every html/template context, including <script>
// where empty HTML would be encoded as "".
type View struct {
	Model any
	Name  string

	ctx     context.Context
	layout  slice.Layout[any]
	failure error
}

// Body renders the content wrapped by this layout. In a view that is not
// used as a layout it renders nothing.
func (v *View) Body() (template.JS, error) {
	return "", v.settle(v.layout.RenderBody(v.ctx))
}

// Section renders the named section defined below this layout. Undefined
// sections render nothing.
func (v *View) Section(name string) (template.JS, error) {
	return "", v.settle(v.layout.RenderSection(v.ctx, name))
}

// Defined reports whether a view below this layout defined name.
func (v *View) Defined(name string) bool {
	return v.layout.IsSectionDefined(name)
}

// settle waits for c. Templates execute synchronously, so the next action
// must not run before the inner render is finished.
func (v *View) settle(c slice.Completion) error {
	err := c.Wait(context.WithoutCancel(v.ctx))
	if err != nil && v.failure == nil {
		v.failure = err
	}
	return err
}

// execute runs fn with a copy of v bound to ctx. Failures of inner renders
// are returned as they were reported instead of wrapped in template
// execution errors.
func (v *View) execute(ctx context.Context, fn func(data *View) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data := *v
	data.ctx = ctx
	data.failure = nil
	err := fn(&data)
	if data.failure != nil {
		return data.failure
	}
	return err
}

// unit is one view instantiated for a render.
type unit struct {
	entry *entry
	snap  *snapshot
	view  View
}

func (u *unit) Render(ctx context.Context, w io.Writer) slice.Completion {
	return slice.Failed(u.view.execute(ctx, func(data *View) error {
		return u.entry.tmpl.Execute(w, data)
	}))
}

func (u *unit) DefineSections(s *slice.Sections) {
	for _, name := range u.entry.sections {
		block := sectionPrefix + name
		s.Define(name, func(ctx context.Context, w io.Writer) slice.Completion {
			return slice.Failed(u.view.execute(ctx, func(data *View) error {
				return u.entry.tmpl.ExecuteTemplate(w, block, data)
			}))
		})
	}
}

// DeclareLayout hands the view's own model to its layout.
func (u *unit) DeclareLayout() (slice.LayoutDef, any) {
	if u.entry.layout == "" {
		return nil, nil
	}
	return u.snap.layouts[u.entry.layout], u.view.Model
}

func (u *unit) RequiredSections() []string {
	return u.entry.required
}

func (s *snapshot) layoutDef(e *entry) slice.LayoutDef {
	return slice.DefineLayout(e.name, func(model any, b slice.Bindings) slice.Unit {
		return &unit{
			entry: e,
			snap:  s,
			view:  View{Model: model, Name: e.name, layout: slice.NewLayout(model, b)},
		}
	})
}
