// Package renderer renders catalog views through the slice composer.
//
// It is the hosting side of the composition protocol: it looks a view up,
// hands it to a Composer bound to the output writer, waits for the render to
// settle and reports failures as classified errors. The CLI and the preview
// server both render through a ViewRenderer.
package renderer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/conneroisu/strata/internal/catalog"
	"github.com/conneroisu/strata/internal/errors"
	"github.com/conneroisu/strata/internal/logging"
	"github.com/conneroisu/strata/pkg/slice"
)

// ViewRenderer renders views of one catalog. It is safe for concurrent use.
type ViewRenderer struct {
	catalog  *catalog.Catalog
	composer *slice.Composer
	logger   logging.Logger
	handler  *errors.ErrorHandler
}

// Option configures a ViewRenderer.
type Option func(*options)

type options struct {
	maxDepth int
}

// WithMaxDepth limits the layout chain of every render.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// NewViewRenderer returns a renderer for views of cat. A nil logger discards
// log output.
func NewViewRenderer(cat *catalog.Catalog, logger logging.Logger, opts ...Option) *ViewRenderer {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	logger = logger.WithComponent("renderer")

	return &ViewRenderer{
		catalog:  cat,
		composer: slice.NewComposer(slice.WithMaxDepth(o.maxDepth)),
		logger:   logger,
		handler:  errors.NewErrorHandler(logger),
	}
}

// Catalog returns the catalog views are looked up in.
func (r *ViewRenderer) Catalog() *catalog.Catalog {
	return r.catalog
}

// Render writes the view name, composed with its layouts, to w. Composition
// failures are reported before anything is written. The returned error is a
// classified *errors.ViewError.
func (r *ViewRenderer) Render(ctx context.Context, w io.Writer, name string, model any) error {
	perf := logging.StartOperation(r.logger, "render")

	if err := validateViewName(name); err != nil {
		return r.fail(ctx, name, err)
	}

	u, err := r.catalog.View(name, model)
	if err != nil {
		return r.fail(ctx, name, err)
	}

	if err := r.composer.Render(ctx, w, u).Wait(ctx); err != nil {
		return r.fail(ctx, name, err)
	}

	perf.End(ctx, "view", name)
	return nil
}

// RenderString renders name into memory. Nothing is returned on failure, so
// callers can still send an error page.
func (r *ViewRenderer) RenderString(ctx context.Context, name string, model any) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(ctx, &buf, name, model); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *ViewRenderer) fail(ctx context.Context, name string, err error) error {
	ve := errors.Classify(err)
	if ve.View == "" {
		ve.View = name
	}
	return r.handler.Handle(ctx, ve)
}

// validateViewName rejects names that could escape the catalog root.
func validateViewName(name string) error {
	if name == "" {
		return errors.NewValidationError(errors.ErrCodeViewNotFound, "view name must be non-empty")
	}
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return errors.NewValidationError(errors.ErrCodeViewNotFound,
			fmt.Sprintf("absolute view name not allowed: %s", name))
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return errors.NewValidationError(errors.ErrCodeViewNotFound,
				fmt.Sprintf("path traversal attempt detected: %s", name))
		}
	}
	return nil
}
