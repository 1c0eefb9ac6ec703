package errors

import (
	"fmt"
	"html"
	"strings"
	"sync"
)

// Collector gathers classified errors, for example across every view checked
// by one run or since the last successful catalog reload.
type Collector struct {
	errors []*ViewError
	mutex  sync.RWMutex
}

// NewCollector creates a new error collector
func NewCollector() *Collector {
	return &Collector{}
}

// Add classifies err and records it. A nil err is ignored.
func (c *Collector) Add(err error) {
	ve := Classify(err)
	if ve == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, ve)
}

// Errors returns a copy of the collected errors in the order they were added.
func (c *Collector) Errors() []*ViewError {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]*ViewError, len(c.errors))
	copy(result, c.errors)
	return result
}

// ByView returns the errors recorded for view.
func (c *Collector) ByView(view string) []*ViewError {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	var result []*ViewError
	for _, err := range c.errors {
		if err.View == view {
			result = append(result, err)
		}
	}
	return result
}

// HasErrors returns true if there are any errors
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.errors) > 0
}

// Len returns the number of collected errors.
func (c *Collector) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.errors)
}

// Clear clears all errors
func (c *Collector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = c.errors[:0]
}

// Overlay renders the collected errors as an HTML overlay for the preview
// server. It returns an empty string when nothing was collected.
func (c *Collector) Overlay() string {
	errs := c.Errors()
	if len(errs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<div id="strata-error-overlay" style="position:fixed;inset:0;background:rgba(0,0,0,.85);` +
		`color:#fff;font-family:Menlo,Monaco,monospace;font-size:14px;z-index:9999;padding:20px;overflow:auto">` +
		`<div style="max-width:1000px;margin:0 auto"><h2 style="color:#ff6b6b">Render errors</h2>`)

	for _, err := range errs {
		color := "#ff6b6b"
		if err.Recoverable {
			color = "#feca57"
		}
		location := err.View
		if err.Line > 0 {
			location += fmt.Sprintf(":%d", err.Line)
			if err.Column > 0 {
				location += fmt.Sprintf(":%d", err.Column)
			}
		}
		fmt.Fprintf(&b, `<div style="background:#2d3748;padding:15px;margin-bottom:15px;border-left:4px solid %s">`+
			`<div style="color:%s;font-weight:bold">%s</div>`+
			`<pre style="white-space:pre-wrap;color:#e2e8f0">%s</pre>`+
			`<div style="color:#a0aec0;font-size:12px">%s</div></div>`,
			color, color, html.EscapeString(err.Code),
			html.EscapeString(err.Error()),
			html.EscapeString(location))
	}

	b.WriteString(`</div></div>`)
	return b.String()
}
