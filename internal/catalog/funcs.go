package catalog

import (
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ugcPolicyOnce sync.Once
	ugcPolicy     *bluemonday.Policy

	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

func ugc() *bluemonday.Policy {
	ugcPolicyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return ugcPolicy
}

func strict() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// Funcs returns the functions available to every template:
//
//	title, upper, lower  case conversion (x/text/cases)
//	sanitize             user HTML cleaned with bluemonday's UGC policy
//	strip                all markup removed
//	default              fallback for empty values: {{default "Untitled" .Model.title}}
//	join                 strings.Join over a list of values
func Funcs() template.FuncMap {
	return template.FuncMap{
		// Casers keep state, so each call gets its own.
		"title": func(s string) string { return cases.Title(language.English).String(s) },
		"upper": func(s string) string { return cases.Upper(language.Und).String(s) },
		"lower": func(s string) string { return cases.Lower(language.Und).String(s) },
		"sanitize": func(s string) template.HTML {
			return template.HTML(ugc().Sanitize(s)) //nolint:gosec // sanitized above
		},
		"strip": func(s string) string {
			return strings.TrimSpace(strict().Sanitize(s))
		},
		"default": func(fallback, v any) any {
			if isEmpty(v) {
				return fallback
			}
			return v
		},
		"join": func(sep string, items []any) string {
			parts := make([]string, len(items))
			for i, item := range items {
				parts[i] = fmt.Sprint(item)
			}
			return strings.Join(parts, sep)
		},
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int:
		return t == 0
	case float64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
