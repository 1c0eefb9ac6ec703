package slice_test

import (
	"bytes"
	"context"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/conneroisu/strata/pkg/slice"
)

// write renders s into w, either inline or on another goroutine.
func write(w io.Writer, s string, async bool) slice.Completion {
	if !async {
		if _, err := io.WriteString(w, s); err != nil {
			return slice.Failed(err)
		}
		return slice.Done()
	}
	return slice.Go(func() error {
		runtime.Gosched()
		_, err := io.WriteString(w, s)
		return err
	})
}

// page is a content unit with a body, sections and an optional layout.
type page struct {
	body     string
	sections map[string]string
	layout   slice.LayoutDef
	model    any
	async    bool
}

func (p *page) Render(_ context.Context, w io.Writer) slice.Completion {
	return write(w, p.body, p.async)
}

func (p *page) DefineSections(s *slice.Sections) {
	for name, content := range p.sections {
		s.Define(name, func(_ context.Context, w io.Writer) slice.Completion {
			return write(w, content, p.async)
		})
	}
}

func (p *page) DeclareLayout() (slice.LayoutDef, any) {
	return p.layout, p.model
}

// scripted is a layout driven by a list of instructions:
// "body", "section:<name>", or literal markup.
type scripted struct {
	slice.Layout[string]
	script   []string
	outer    func() slice.LayoutDef
	sections map[string]string
	required []string
	async    bool
}

type layoutConfig struct {
	script   []string
	outer    func() slice.LayoutDef
	sections map[string]string
	required []string
	async    bool
}

func defineScripted(name string, cfg layoutConfig) slice.LayoutDef {
	return slice.DefineLayout(name, func(model string, b slice.Bindings) slice.Unit {
		return &scripted{
			Layout:   slice.NewLayout(model, b),
			script:   cfg.script,
			outer:    cfg.outer,
			sections: cfg.sections,
			required: cfg.required,
			async:    cfg.async,
		}
	})
}

func (l *scripted) Render(ctx context.Context, w io.Writer) slice.Completion {
	steps := make([]slice.Step, 0, len(l.script))
	for _, op := range l.script {
		switch {
		case op == "body":
			steps = append(steps, l.Body())
		case strings.HasPrefix(op, "section:"):
			steps = append(steps, l.Section(strings.TrimPrefix(op, "section:")))
		default:
			markup := op
			steps = append(steps, func(context.Context) slice.Completion {
				return write(w, markup, l.async)
			})
		}
	}
	return slice.Run(ctx, steps...)
}

func (l *scripted) DeclareLayout() (slice.LayoutDef, any) {
	if l.outer == nil {
		return nil, nil
	}
	return l.outer(), l.Model
}

func (l *scripted) DefineSections(s *slice.Sections) {
	for name, content := range l.sections {
		if content == "forward" {
			forwarded := name
			s.Define(name, func(ctx context.Context, w io.Writer) slice.Completion {
				return slice.Run(ctx,
					slice.Write(w, "["),
					l.Section(forwarded),
					slice.Write(w, "]"),
				)
			})
			continue
		}
		markup := content
		s.Define(name, func(_ context.Context, w io.Writer) slice.Completion {
			return write(w, markup, l.async)
		})
	}
}

func (l *scripted) RequiredSections() []string {
	return l.required
}

func staticLayout(def slice.LayoutDef) func() slice.LayoutDef {
	return func() slice.LayoutDef { return def }
}

// render composes u and waits for the result.
func render(u slice.Unit, opts ...slice.Option) (string, error) {
	var buf bytes.Buffer
	err := slice.NewComposer(opts...).Render(context.Background(), &buf, u).Wait(context.Background())
	return buf.String(), err
}

// countingWriter records how many bytes reached it.
type countingWriter struct {
	mu sync.Mutex
	n  int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n += len(p)
	return len(p), nil
}

// failingWriter fails every write after the first limit bytes.
type failingWriter struct {
	buf   bytes.Buffer
	limit int
	err   error
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.buf.Len()+len(p) > f.limit {
		return 0, f.err
	}
	return f.buf.Write(p)
}
