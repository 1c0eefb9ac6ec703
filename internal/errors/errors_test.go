package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/strata/pkg/slice"
)

func TestViewErrorFormatting(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := NewRenderError(ErrCodeRenderFailed, "render failed", cause).
		WithView("home.html.tmpl").
		WithLocation(3, 7)
	err.Section = "scripts"

	assert.Equal(t, "[ERR_RENDER_FAILED] view:home.html.tmpl:3:7 section:scripts render failed: unexpected EOF", err.Error())
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestViewErrorIs(t *testing.T) {
	a := NewValidationError(ErrCodeViewNotFound, "a")
	b := NewValidationError(ErrCodeViewNotFound, "b")
	c := NewValidationError(ErrCodeModelInvalid, "a")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", a), b))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantCode string
	}{
		{
			name:     "cycle",
			err:      &slice.CompositionError{Op: "layout", Chain: []string{"a", "b", "a"}, Err: slice.ErrLayoutCycle},
			wantType: ErrorTypeComposition,
			wantCode: ErrCodeLayoutCycle,
		},
		{
			name:     "empty section name",
			err:      &slice.CompositionError{Op: "sections", Err: slice.ErrEmptySectionName},
			wantType: ErrorTypeValidation,
			wantCode: ErrCodeEmptySectionName,
		},
		{
			name:     "depth",
			err:      &slice.CompositionError{Op: "layout", Err: slice.ErrLayoutDepth},
			wantType: ErrorTypeComposition,
			wantCode: ErrCodeLayoutDepth,
		},
		{
			name:     "model type",
			err:      &slice.CompositionError{Op: "layout", Err: fmt.Errorf("%w: details", slice.ErrModelType)},
			wantType: ErrorTypeComposition,
			wantCode: ErrCodeModelType,
		},
		{
			name:     "missing section",
			err:      &slice.CompositionError{Op: "sections", Section: "title", Err: slice.ErrMissingSection},
			wantType: ErrorTypeComposition,
			wantCode: ErrCodeMissingSection,
		},
		{name: "empty section", err: slice.ErrEmptySectionName, wantType: ErrorTypeValidation, wantCode: ErrCodeEmptySectionName},
		{name: "panic", err: fmt.Errorf("%w: boom", slice.ErrRenderPanic), wantType: ErrorTypeInternal, wantCode: ErrCodeRenderPanic},
		{name: "canceled", err: context.Canceled, wantType: ErrorTypeRender, wantCode: ErrCodeRenderCanceled},
		{name: "not found", err: fmt.Errorf("open x: %w", fs.ErrNotExist), wantType: ErrorTypeIO, wantCode: ErrCodeFileNotFound},
		{name: "other", err: errors.New("disk on fire"), wantType: ErrorTypeRender, wantCode: ErrCodeRenderFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := Classify(tt.err)
			require.NotNil(t, ve)
			assert.Equal(t, tt.wantType, ve.Type)
			assert.Equal(t, tt.wantCode, ve.Code)
			assert.ErrorIs(t, ve, tt.err)
		})
	}

	assert.Nil(t, Classify(nil))

	existing := NewConfigError(ErrCodeConfigInvalid, "bad")
	assert.Same(t, existing, Classify(fmt.Errorf("loading: %w", existing)))
}

func TestClassifyCompositionContext(t *testing.T) {
	ve := Classify(&slice.CompositionError{Op: "sections", Chain: []string{"page", "base"}, Section: "title", Err: slice.ErrMissingSection})
	assert.Equal(t, "title", ve.Section)
	assert.Equal(t, "page -> base", ve.Context["chain"])
}

func TestClassifyTemplateLocation(t *testing.T) {
	err := errors.New(`template: pages/home.html.tmpl:12:5: executing "pages/home.html.tmpl" at <.Model.Missing>: map has no entry`)
	ve := Classify(err)
	assert.Equal(t, "pages/home.html.tmpl", ve.View)
	assert.Equal(t, 12, ve.Line)
	assert.Equal(t, 5, ve.Column)
}

func TestParseTemplateLocation(t *testing.T) {
	tests := []struct {
		msg    string
		want   TemplateLocation
		wantOK bool
	}{
		{msg: `template: a.html.tmpl:3: unexpected "}" in operand`, want: TemplateLocation{Name: "a.html.tmpl", Line: 3}, wantOK: true},
		{msg: `template: a.html.tmpl:3:9: executing "a"`, want: TemplateLocation{Name: "a.html.tmpl", Line: 3, Column: 9}, wantOK: true},
		{msg: `html/template:b.html.tmpl:1:2: ends in a non-text context`, want: TemplateLocation{Name: "b.html.tmpl", Line: 1, Column: 2}, wantOK: true},
		{msg: "no location here"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got, ok := ParseTemplateLocation(tt.msg)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

type recordingLogger struct {
	warns, errs []string
}

func (r *recordingLogger) Error(_ context.Context, _ error, msg string, _ ...interface{}) {
	r.errs = append(r.errs, msg)
}

func (r *recordingLogger) Warn(_ context.Context, _ error, msg string, _ ...interface{}) {
	r.warns = append(r.warns, msg)
}

func TestErrorHandler(t *testing.T) {
	logger := &recordingLogger{}
	h := NewErrorHandler(logger)

	assert.Nil(t, h.Handle(context.Background(), nil))

	ve := h.Handle(context.Background(), &slice.CompositionError{Err: slice.ErrLayoutCycle})
	assert.Equal(t, ErrCodeLayoutCycle, ve.Code)
	assert.Equal(t, []string{"layout cycle"}, logger.warns)

	h.Handle(context.Background(), fmt.Errorf("%w: x", slice.ErrRenderPanic))
	assert.Equal(t, []string{"render panicked"}, logger.errs)
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.HasErrors())
	assert.Empty(t, c.Overlay())

	c.Add(nil)
	c.Add(ErrViewNotFound("missing.html.tmpl"))
	c.Add(NewRenderError(ErrCodeRenderFailed, "<script>alert(1)</script>", nil).WithView("a.html.tmpl"))

	assert.Equal(t, 2, c.Len())
	assert.Len(t, c.ByView("a.html.tmpl"), 1)

	overlay := c.Overlay()
	assert.Contains(t, overlay, "strata-error-overlay")
	assert.Contains(t, overlay, "ERR_VIEW_NOT_FOUND")
	assert.NotContains(t, overlay, "<script>alert(1)</script>")
	assert.Contains(t, overlay, "&lt;script&gt;")

	c.Clear()
	assert.False(t, c.HasErrors())
}

func TestSuggestViews(t *testing.T) {
	available := []string{"pages/home.html.tmpl", "pages/about.html.tmpl", "layouts/base.html.tmpl"}

	assert.Equal(t, []string{"pages/home.html.tmpl"}, SuggestViews("pages/hme.html.tmpl", available, 3))
	assert.Equal(t, []string{"pages/about.html.tmpl"}, SuggestViews("about", available, 3))
	assert.Empty(t, SuggestViews("zzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", available, 3))

	err := ViewNotFound("pages/hme.html.tmpl", available)
	assert.Contains(t, err.Error(), "did you mean pages/home.html.tmpl?")
}
