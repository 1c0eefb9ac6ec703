// Package errors classifies failures from catalog loading and view rendering
// so they can be logged, shown in the preview overlay and reported by the CLI.
package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/conneroisu/strata/pkg/slice"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeComposition ErrorType = "composition"
	ErrorTypeRender      ErrorType = "render"
	ErrorTypeIO          ErrorType = "io"
	ErrorTypeConfig      ErrorType = "config"
	ErrorTypeInternal    ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeViewNotFound     = "ERR_VIEW_NOT_FOUND"
	ErrCodeLayoutNotFound   = "ERR_LAYOUT_NOT_FOUND"
	ErrCodeLayoutCycle      = "ERR_LAYOUT_CYCLE"
	ErrCodeLayoutDepth      = "ERR_LAYOUT_DEPTH"
	ErrCodeModelType        = "ERR_MODEL_TYPE"
	ErrCodeMissingSection   = "ERR_MISSING_SECTION"
	ErrCodeEmptySectionName = "ERR_EMPTY_SECTION_NAME"
	ErrCodeTemplateParse    = "ERR_TEMPLATE_PARSE"
	ErrCodeRenderFailed     = "ERR_RENDER_FAILED"
	ErrCodeRenderCanceled   = "ERR_RENDER_CANCELED"
	ErrCodeRenderPanic      = "ERR_RENDER_PANIC"
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeModelInvalid     = "ERR_MODEL_INVALID"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeMarkupInvalid    = "ERR_MARKUP_INVALID"
	ErrCodeInternalError    = "ERR_INTERNAL"
)

// ViewError is a structured error type with context.
type ViewError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	View        string
	Section     string
	Line        int
	Column      int
	Context     map[string]interface{}
	Recoverable bool
}

// Error implements the error interface.
func (e *ViewError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.View != "" {
		location := "view:" + e.View
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
			if e.Column > 0 {
				location += fmt.Sprintf(":%d", e.Column)
			}
		}
		parts = append(parts, location)
	}

	if e.Section != "" {
		parts = append(parts, "section:"+e.Section)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *ViewError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *ViewError) Is(target error) bool {
	var t *ViewError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *ViewError) WithContext(key string, value interface{}) *ViewError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithView records the view the error belongs to.
func (e *ViewError) WithView(view string) *ViewError {
	e.View = view

	return e
}

// WithLocation records a position inside the view's template.
func (e *ViewError) WithLocation(line, column int) *ViewError {
	e.Line = line
	e.Column = column

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *ViewError {
	return &ViewError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewCompositionError creates an error for a layout chain that cannot be
// assembled.
func NewCompositionError(code, message string, cause error) *ViewError {
	return &ViewError{
		Type:        ErrorTypeComposition,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewRenderError creates a render error.
func NewRenderError(code, message string, cause error) *ViewError {
	return &ViewError{
		Type:        ErrorTypeRender,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *ViewError {
	return &ViewError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *ViewError {
	return &ViewError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *ViewError {
	return &ViewError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrViewNotFound creates a view-not-found error.
func ErrViewNotFound(name string) *ViewError {
	return NewValidationError(ErrCodeViewNotFound, "view not found").WithView(name)
}

// Classify converts err into a *ViewError. Errors that already are a
// *ViewError are returned as they are; a nil err gives nil.
func Classify(err error) *ViewError {
	if err == nil {
		return nil
	}

	var ve *ViewError
	if errors.As(err, &ve) {
		return ve
	}

	var ce *slice.CompositionError
	if errors.As(err, &ce) {
		classified := classifyComposition(ce, err)
		classified.Section = ce.Section
		if len(ce.Chain) > 0 {
			classified.WithContext("chain", strings.Join(ce.Chain, " -> "))
		}
		return classified
	}

	switch {
	case errors.Is(err, slice.ErrEmptySectionName):
		return NewValidationError(ErrCodeEmptySectionName, "section name must be non-empty").withCause(err)
	case errors.Is(err, slice.ErrRenderPanic):
		return NewInternalError(ErrCodeRenderPanic, "render panicked", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewRenderError(ErrCodeRenderCanceled, "render canceled", err)
	case errors.Is(err, fs.ErrNotExist):
		return NewIOError(ErrCodeFileNotFound, "file not found", err)
	}

	classified := NewRenderError(ErrCodeRenderFailed, "render failed", err)
	if loc, ok := ParseTemplateLocation(err.Error()); ok {
		classified.View = loc.Name
		classified.WithLocation(loc.Line, loc.Column)
	}
	return classified
}

func classifyComposition(ce *slice.CompositionError, err error) *ViewError {
	switch {
	case errors.Is(ce.Err, slice.ErrLayoutCycle):
		return NewCompositionError(ErrCodeLayoutCycle, "layout cycle", err)
	case errors.Is(ce.Err, slice.ErrLayoutDepth):
		return NewCompositionError(ErrCodeLayoutDepth, "layout chain too deep", err)
	case errors.Is(ce.Err, slice.ErrModelType):
		return NewCompositionError(ErrCodeModelType, "layout model type mismatch", err)
	case errors.Is(ce.Err, slice.ErrMissingSection):
		return NewCompositionError(ErrCodeMissingSection, "required section not defined", err)
	case errors.Is(ce.Err, slice.ErrEmptySectionName):
		return NewValidationError(ErrCodeEmptySectionName, "section name must be non-empty").withCause(err)
	case errors.Is(ce.Err, slice.ErrRenderPanic):
		return NewInternalError(ErrCodeRenderPanic, "section definitions panicked", err)
	default:
		return NewCompositionError(ErrCodeInternalError, "layout could not be built", err)
	}
}

func (e *ViewError) withCause(err error) *ViewError {
	e.Cause = err

	return e
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ve *ViewError
	if errors.As(err, &ve) {
		return ve.Recoverable
	}

	return false
}

// HasErrorType reports whether err classifies as errType.
func HasErrorType(err error, errType ErrorType) bool {
	ve := Classify(err)
	return ve != nil && ve.Type == errType
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle classifies err, logs it and returns the classified error. Recoverable
// errors, typically a broken template being edited, are logged as warnings.
func (h *ErrorHandler) Handle(ctx context.Context, err error) *ViewError {
	ve := Classify(err)
	if ve == nil || h == nil || h.logger == nil {
		return ve
	}

	fields := []interface{}{
		"type", ve.Type,
		"code", ve.Code,
	}
	if ve.View != "" {
		fields = append(fields, "view", ve.View)
	}
	if ve.Section != "" {
		fields = append(fields, "section", ve.Section)
	}
	for k, v := range ve.Context {
		fields = append(fields, k, v)
	}

	switch {
	case ve.Recoverable:
		h.logger.Warn(ctx, err, ve.Message, fields...)
	default:
		h.logger.Error(ctx, err, ve.Message, fields...)
	}

	return ve
}
