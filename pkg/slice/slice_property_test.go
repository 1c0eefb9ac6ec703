//go:build property
// +build property

package slice_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/conneroisu/strata/pkg/slice"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// chainOf builds depth nested layouts, l0 outermost, each wrapping its body
// in <lN>..</lN>, and returns the innermost one.
func chainOf(depth int, async bool) slice.LayoutDef {
	var inner slice.LayoutDef
	for i := 0; i < depth; i++ {
		var next func() slice.LayoutDef
		if inner != nil {
			next = staticLayout(inner)
		}
		tag := fmt.Sprintf("l%d", i)
		inner = defineScripted(tag, layoutSpec{
			script: []string{"<" + tag + ">", "body", "</" + tag + ">"},
			outer:  next,
			async:  async,
		})
	}
	return inner
}

func TestCompositionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("nested layouts wrap the body innermost first", prop.ForAll(
		func(depth int, body string, async bool) bool {
			if depth == 0 {
				out, err := render(&page{body: body, async: async})
				return err == nil && out == body
			}
			inner := chainOf(depth, async)
			out, err := render(&page{body: body, layout: inner, async: async})
			if err != nil {
				return false
			}

			var want strings.Builder
			for i := 0; i < depth; i++ {
				fmt.Fprintf(&want, "<l%d>", i)
			}
			want.WriteString(body)
			for i := depth - 1; i >= 0; i-- {
				fmt.Fprintf(&want, "</l%d>", i)
			}
			return out == want.String()
		},
		gen.IntRange(0, 8),
		gen.AlphaString(),
		gen.Bool(),
	))

	properties.Property("sections render where the layout places them", prop.ForAll(
		func(title, scripts, body string) bool {
			layout := defineScripted("site", layoutSpec{script: headBodyScripts})
			sections := map[string]string{}
			if title != "" {
				sections["title"] = title
			}
			if scripts != "" {
				sections["scripts"] = scripts
			}
			out, err := render(&page{body: body, sections: sections, layout: layout})
			want := "<head>" + title + "</head><body>" + body + "</body>" + scripts
			return err == nil && out == want
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("cyclic chains write nothing", prop.ForAll(
		func(size int) bool {
			defs := make([]slice.LayoutDef, size)
			for i := range defs {
				next := (i + 1) % size
				defs[i] = defineScripted(fmt.Sprintf("c%d", i), layoutSpec{
					script: []string{"x", "body"},
					outer:  func() slice.LayoutDef { return defs[next] },
				})
			}

			var w countingWriter
			err := slice.Render(context.Background(), &w, &page{body: "A", layout: defs[0]}).Wait(context.Background())
			return err != nil && w.n == 0
		},
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}
