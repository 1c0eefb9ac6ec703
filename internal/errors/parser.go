package errors

import (
	"regexp"
	"strconv"
)

// TemplateLocation is a position reported by the html/template runtime.
type TemplateLocation struct {
	Name   string
	Line   int
	Column int
}

// Matches both parse errors ("template: a.html.tmpl:3: ...") and execution
// errors ("template: a.html.tmpl:3:7: executing ..."), including the
// "html/template:" prefix used by the escaper.
var templateLocationPattern = regexp.MustCompile(`(?:html/)?template: ?([^:\s]+):(\d+)(?::(\d+))?:`)

// ParseTemplateLocation extracts the first template position from msg.
func ParseTemplateLocation(msg string) (TemplateLocation, bool) {
	matches := templateLocationPattern.FindStringSubmatch(msg)
	if matches == nil {
		return TemplateLocation{}, false
	}

	loc := TemplateLocation{Name: matches[1]}
	loc.Line, _ = strconv.Atoi(matches[2])
	if matches[3] != "" {
		loc.Column, _ = strconv.Atoi(matches[3])
	}
	return loc, true
}
