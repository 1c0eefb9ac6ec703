package slice

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptySectionName is returned when a section is requested or defined
	// without a name.
	ErrEmptySectionName = errors.New("slice: section name must be non-empty")

	// ErrLayoutCycle is returned when a layout chain refers back to a layout
	// already in the chain.
	ErrLayoutCycle = errors.New("slice: layout cycle")

	// ErrLayoutDepth is returned when a layout chain is deeper than the
	// composer allows.
	ErrLayoutDepth = errors.New("slice: layout chain too deep")

	// ErrModelType is returned when a layout receives a model of the wrong
	// type.
	ErrModelType = errors.New("slice: layout model type mismatch")

	// ErrMissingSection is returned when a layout requires a section that the
	// wrapped units never defined.
	ErrMissingSection = errors.New("slice: required section not defined")

	// ErrRenderPanic wraps a panic recovered from asynchronous render work.
	ErrRenderPanic = errors.New("slice: render panicked")
)

// CompositionError describes a layout chain that could not be assembled. It
// is always reported before any output is written.
type CompositionError struct {
	// Op is the composition step that failed, e.g. "layout" or "sections".
	Op string
	// Chain lists the layout names resolved so far, innermost first.
	Chain []string
	// Section is set for ErrMissingSection.
	Section string
	Err     error
}

func (e *CompositionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Section != "" {
		fmt.Fprintf(&b, " %q", e.Section)
	}
	if len(e.Chain) > 0 {
		fmt.Fprintf(&b, " (chain: %s)", strings.Join(e.Chain, " -> "))
	}
	return b.String()
}

func (e *CompositionError) Unwrap() error {
	return e.Err
}
