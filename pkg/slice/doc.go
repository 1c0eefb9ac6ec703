// Package slice composes renderable template units with the layouts that
// wrap them.
//
// A content unit declares a layout through Declarer and its named sections
// through SectionDefiner. The Composer builds the layout chain for one
// render, handing each layout a Bindings value whose callbacks render the
// next-inner unit and look up sections. Layout code decides where the body and
// each section land by calling RenderBody and RenderSection, so output order
// is exactly the order in which the outermost layout asks for it:
//
//	site := slice.DefineLayout("site", func(m Page, b slice.Bindings) slice.Unit {
//		return &Site{Layout: slice.NewLayout(m, b)}
//	})
//
//	func (s *Site) Render(ctx context.Context, w io.Writer) slice.Completion {
//		return slice.Run(ctx,
//			slice.Write(w, "<head>"),
//			s.Section("title"),
//			slice.Write(w, "</head><body>"),
//			s.Body(),
//			slice.Write(w, "</body>"),
//		)
//	}
//
// Renders report through Completion. Units that write straight to the sink
// return an already finished Completion, which callers detect with Inline and
// handle on the current goroutine without allocating. Only units that
// genuinely suspend pay for a promise and a continuation.
//
// Every Bindings value and Sections registry belongs to exactly one render,
// so independent renders may run concurrently without locking.
package slice
