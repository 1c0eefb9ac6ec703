package slice

import (
	"context"
	"io"
)

// Unit is a renderable template instance. A unit is created for one render,
// executed once and then discarded.
type Unit interface {
	Render(ctx context.Context, w io.Writer) Completion
}

// UnitFunc adapts a function to the Unit interface.
type UnitFunc func(ctx context.Context, w io.Writer) Completion

// Render calls f.
func (f UnitFunc) Render(ctx context.Context, w io.Writer) Completion {
	return f(ctx, w)
}

// Slice is embedded by units that are bound to a typed model.
type Slice[M any] struct {
	Model M
}

// SectionDefiner is implemented by units that declare sections for the
// layout wrapping them. DefineSections runs before any layout executes.
type SectionDefiner interface {
	DefineSections(s *Sections)
}

// Declarer is implemented by units that are wrapped in a layout. It returns
// the layout definition and the model to hand to it; a nil LayoutDef means the
// unit renders on its own.
type Declarer interface {
	DeclareLayout() (LayoutDef, any)
}

// SectionRequirer is implemented by layouts that refuse to render unless the
// named sections were defined by the units they wrap.
type SectionRequirer interface {
	RequiredSections() []string
}
