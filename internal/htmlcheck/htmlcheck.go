// Package htmlcheck inspects rendered markup for structural mistakes: end
// tags without a matching start tag and elements that are never closed. It
// can also flag a few accessibility problems that show up in layouts.
//
// The check is a streaming pass over golang.org/x/net/html tokens; it does not
// build a tree, so it reports what the source says rather than what a browser
// would repair it into.
package htmlcheck

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Severity of a Problem.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule identifiers.
const (
	RuleUnexpectedEndTag = "unexpected-end-tag"
	RuleUnclosedElement  = "unclosed-element"
	RuleImgAlt           = "img-alt"
	RuleHTMLLang         = "html-lang"
	RuleDocumentTitle    = "document-title"
	RuleDuplicateID      = "duplicate-id"
)

// Problem is one finding.
type Problem struct {
	Rule     string   `json:"rule" yaml:"rule"`
	Severity Severity `json:"severity" yaml:"severity"`
	Line     int      `json:"line" yaml:"line"`
	Tag      string   `json:"tag,omitempty" yaml:"tag,omitempty"`
	Message  string   `json:"message" yaml:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%d: %s: %s (%s)", p.Line, p.Severity, p.Message, p.Rule)
}

// Option configures Check.
type Option func(*checker)

// WithAccessibility enables the accessibility rules: img-alt, html-lang,
// document-title and duplicate-id.
func WithAccessibility() Option {
	return func(c *checker) { c.a11y = true }
}

var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Param: true, atom.Source: true,
	atom.Track: true, atom.Wbr: true,
}

// Elements whose end tag may be omitted.
var optionalEnd = map[atom.Atom]bool{
	atom.Html: true, atom.Head: true, atom.Body: true,
	atom.P: true, atom.Li: true, atom.Dt: true, atom.Dd: true,
	atom.Option: true, atom.Optgroup: true, atom.Rt: true, atom.Rp: true,
	atom.Tr: true, atom.Td: true, atom.Th: true,
	atom.Thead: true, atom.Tbody: true, atom.Tfoot: true, atom.Colgroup: true,
}

type openElement struct {
	name string
	a    atom.Atom
	line int
}

type checker struct {
	a11y     bool
	stack    []openElement
	problems []Problem

	sawHTML  bool
	sawTitle bool
	ids      map[string]int
}

// Check reads markup from r and returns the problems found, in document
// order. The error is non-nil only when r fails.
func Check(r io.Reader, opts ...Option) ([]Problem, error) {
	c := &checker{ids: make(map[string]int)}
	for _, opt := range opts {
		opt(c)
	}

	z := html.NewTokenizer(r)
	line := 1
	for {
		tt := z.Next()
		tokenLine := line
		line += bytes.Count(z.Raw(), []byte{'\n'})

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return c.problems, err
			}
			c.finish(line)
			return c.problems, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			el := openElement{name: string(name), a: atom.Lookup(name), line: tokenLine}
			var attrs map[string]string
			if hasAttr {
				attrs = readAttrs(z)
			}
			c.start(el, attrs, tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			name, _ := z.TagName()
			c.end(openElement{name: string(name), a: atom.Lookup(name), line: tokenLine})
		}
	}
}

func readAttrs(z *html.Tokenizer) map[string]string {
	attrs := make(map[string]string)
	for {
		key, val, more := z.TagAttr()
		attrs[string(key)] = string(val)
		if !more {
			return attrs
		}
	}
}

func (c *checker) start(el openElement, attrs map[string]string, selfClosing bool) {
	if c.a11y {
		c.inspect(el, attrs)
	}
	if selfClosing || voidElements[el.a] {
		return
	}
	c.stack = append(c.stack, el)
}

func (c *checker) end(el openElement) {
	if voidElements[el.a] {
		c.report(RuleUnexpectedEndTag, SeverityWarning, el.line, el.name,
			fmt.Sprintf("end tag for void element <%s>", el.name))
		return
	}

	idx := -1
	for i := len(c.stack) - 1; i >= 0; i-- {
		if c.stack[i].name == el.name {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.report(RuleUnexpectedEndTag, SeverityError, el.line, el.name,
			fmt.Sprintf("</%s> has no matching start tag", el.name))
		return
	}

	for _, skipped := range c.stack[idx+1:] {
		if !optionalEnd[skipped.a] {
			c.report(RuleUnclosedElement, SeverityError, skipped.line, skipped.name,
				fmt.Sprintf("<%s> is not closed before </%s>", skipped.name, el.name))
		}
	}
	c.stack = c.stack[:idx]
}

func (c *checker) finish(line int) {
	for _, open := range c.stack {
		if !optionalEnd[open.a] {
			c.report(RuleUnclosedElement, SeverityError, open.line, open.name,
				fmt.Sprintf("<%s> is never closed", open.name))
		}
	}
	c.stack = nil

	if c.a11y && c.sawHTML && !c.sawTitle {
		c.report(RuleDocumentTitle, SeverityWarning, line, "title", "document has no <title>")
	}
}

func (c *checker) inspect(el openElement, attrs map[string]string) {
	switch el.a {
	case atom.Img:
		if _, ok := attrs["alt"]; !ok {
			c.report(RuleImgAlt, SeverityWarning, el.line, el.name, "<img> has no alt attribute")
		}
	case atom.Html:
		c.sawHTML = true
		if attrs["lang"] == "" {
			c.report(RuleHTMLLang, SeverityWarning, el.line, el.name, "<html> has no lang attribute")
		}
	case atom.Title:
		c.sawTitle = true
	}

	if id := attrs["id"]; id != "" {
		if first, seen := c.ids[id]; seen {
			c.report(RuleDuplicateID, SeverityWarning, el.line, el.name,
				fmt.Sprintf("id %q already used on line %d", id, first))
		} else {
			c.ids[id] = el.line
		}
	}
}

func (c *checker) report(rule string, sev Severity, line int, tag, msg string) {
	c.problems = append(c.problems, Problem{Rule: rule, Severity: sev, Line: line, Tag: tag, Message: msg})
}

// Errors returns only the problems with SeverityError.
func Errors(problems []Problem) []Problem {
	var out []Problem
	for _, p := range problems {
		if p.Severity == SeverityError {
			out = append(out, p)
		}
	}
	return out
}
