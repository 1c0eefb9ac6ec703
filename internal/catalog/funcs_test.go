package catalog

import (
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, src string, data any) string {
	t.Helper()
	tmpl, err := template.New("t").Funcs(Funcs()).Parse(src)
	require.NoError(t, err)
	var b strings.Builder
	require.NoError(t, tmpl.Execute(&b, data))
	return b.String()
}

func TestFuncs(t *testing.T) {
	tests := []struct {
		name string
		src  string
		data any
		want string
	}{
		{name: "title", src: `{{title .}}`, data: "hello world", want: "Hello World"},
		{name: "upper", src: `{{upper .}}`, data: "hello", want: "HELLO"},
		{name: "lower", src: `{{lower .}}`, data: "HeLLo", want: "hello"},
		{name: "sanitize keeps safe markup", src: `{{sanitize .}}`, data: `<b>hi</b><script>x()</script>`, want: "<b>hi</b>"},
		{name: "strip", src: `{{strip .}}`, data: ` <p>plain <em>text</em></p> `, want: "plain text"},
		{name: "default empty", src: `{{default "none" .}}`, data: "", want: "none"},
		{name: "default set", src: `{{default "none" .}}`, data: "x", want: "x"},
		{name: "join", src: `{{join ", " .}}`, data: []any{"a", 1, true}, want: "a, 1, true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, execute(t, tt.src, tt.data))
		})
	}
}
