package slice

import (
	"context"
	"io"
	"sort"
)

// SectionFunc renders a deferred section into w.
type SectionFunc func(ctx context.Context, w io.Writer) Completion

// Sections maps section names to deferred renders for a single render pass.
// The zero value is ready to use.
type Sections struct {
	defs map[string]SectionFunc
}

// Define registers fn under name. Defining a name again replaces the earlier
// definition. Define panics on an empty name or nil fn.
func (s *Sections) Define(name string, fn SectionFunc) {
	if name == "" {
		panic(ErrEmptySectionName)
	}
	if fn == nil {
		panic("slice: nil SectionFunc for section " + name)
	}
	if s.defs == nil {
		s.defs = make(map[string]SectionFunc)
	}
	s.defs[name] = fn
}

// TryGet returns the render registered under name.
func (s *Sections) TryGet(name string) (SectionFunc, bool) {
	if s == nil {
		return nil, false
	}
	fn, ok := s.defs[name]
	return fn, ok
}

// Has reports whether name is defined.
func (s *Sections) Has(name string) bool {
	_, ok := s.TryGet(name)
	return ok
}

// Len returns the number of defined sections.
func (s *Sections) Len() int {
	if s == nil {
		return 0
	}
	return len(s.defs)
}

// Names returns the defined section names in sorted order.
func (s *Sections) Names() []string {
	if s.Len() == 0 {
		return nil
	}
	names := make([]string, 0, len(s.defs))
	for name := range s.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
