package catalog

import (
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/conneroisu/strata/internal/errors"
)

// sectionPrefix marks a {{define}} block as a section for the layout that
// wraps the view.
const sectionPrefix = "section:"

// headerRe matches directives in template comments:
//
//	{{/* strata:layout layouts/base.html.tmpl */}}
//	{{/* strata:require title scripts */}}
var headerRe = regexp.MustCompile(`\{\{-?\s*/\*\s*strata:(layout|require)\s+([^*]*?)\s*\*/\s*-?\}\}`)

type entry struct {
	name     string
	tmpl     *template.Template
	layout   string
	required []string
	sections []string
}

type header struct {
	layout   string
	required []string
}

func parseHeader(name, src string) (header, error) {
	var h header
	for _, m := range headerRe.FindAllStringSubmatch(src, -1) {
		switch m[1] {
		case "layout":
			if h.layout != "" {
				return h, fmt.Errorf("%s: layout declared twice", name)
			}
			h.layout = strings.TrimSpace(m[2])
		case "require":
			h.required = append(h.required, strings.Fields(m[2])...)
		}
	}
	return h, nil
}

// load walks fsys for files whose base name matches pattern and parses each
// into its own template set, so section blocks of different views never
// collide.
func load(fsys fs.FS, pattern string, funcs template.FuncMap) (map[string]*entry, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, &errors.ViewError{
			Type:    errors.ErrorTypeConfig,
			Code:    errors.ErrCodeConfigInvalid,
			Message: fmt.Sprintf("invalid template pattern %q", pattern),
			Cause:   err,
		}
	}

	entries := make(map[string]*entry)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := path.Match(pattern, d.Name()); !ok {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return errors.NewIOError(errors.ErrCodeFileNotFound, "reading template", err).WithView(p)
		}
		e, err := parseEntry(p, string(data), funcs)
		if err != nil {
			return err
		}
		entries[p] = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := resolve(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func parseEntry(name, src string, funcs template.FuncMap) (*entry, error) {
	h, err := parseHeader(name, src)
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeTemplateParse, err.Error()).WithView(name)
	}

	tmpl, err := template.New(name).Funcs(funcs).Parse(src)
	if err != nil {
		ve := errors.Classify(err)
		ve.Type = errors.ErrorTypeValidation
		ve.Code = errors.ErrCodeTemplateParse
		ve.Message = "parsing template"
		return nil, ve.WithView(name)
	}

	e := &entry{name: name, tmpl: tmpl, layout: h.layout, required: h.required}
	for _, t := range tmpl.Templates() {
		section, ok := strings.CutPrefix(t.Name(), sectionPrefix)
		if !ok {
			continue
		}
		if section == "" {
			return nil, errors.NewValidationError(errors.ErrCodeEmptySectionName,
				"section name must be non-empty").WithView(name)
		}
		e.sections = append(e.sections, section)
	}
	slices.Sort(e.sections)
	return e, nil
}

// resolve checks that every layout reference names a loaded view and that no
// chain loops back on itself.
func resolve(entries map[string]*entry) error {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		e := entries[name]
		if e.layout == "" {
			continue
		}
		if _, ok := entries[e.layout]; !ok {
			return errors.NewCompositionError(errors.ErrCodeLayoutNotFound,
				fmt.Sprintf("layout %q not found", e.layout), nil).
				WithView(name).
				WithContext("suggestions", errors.SuggestViews(e.layout, names, 3))
		}
	}

	for _, name := range names {
		var chain []string
		for cur := name; cur != ""; cur = entries[cur].layout {
			if slices.Contains(chain, cur) {
				chain = append(chain, cur)
				return errors.NewCompositionError(errors.ErrCodeLayoutCycle,
					fmt.Sprintf("inheritance cycle in templates [%s]", strings.Join(chain, ", ")), nil).
					WithView(name).
					WithContext("chain", strings.Join(chain, " -> "))
			}
			chain = append(chain, cur)
		}
	}
	return nil
}
