package slice

import (
	"context"
	"io"
)

// Step is one ordered piece of a render: static markup, the body, a section,
// or any other write into the sink.
type Step func(ctx context.Context) Completion

// Run executes steps in order. While every step finishes inline Run stays on
// the calling goroutine; the first step that suspends moves the remaining
// steps onto a continuation that starts once that step has finished. The
// first failure stops the run.
func Run(ctx context.Context, steps ...Step) Completion {
	for i, step := range steps {
		c := step(ctx)
		done, err := Inline(c)
		if !done {
			return await(c, func(err error) Completion {
				if err != nil {
					return Failed(err)
				}
				return Run(ctx, steps[i+1:]...)
			})
		}
		if err != nil {
			return Failed(err)
		}
	}
	return Done()
}

// Write returns a Step that writes s to w.
func Write(w io.Writer, s string) Step {
	return func(context.Context) Completion {
		_, err := io.WriteString(w, s)
		return settle(err)
	}
}

// RenderStep returns a Step that renders u into w.
func RenderStep(u Unit, w io.Writer) Step {
	return func(ctx context.Context) Completion {
		return u.Render(ctx, w)
	}
}
