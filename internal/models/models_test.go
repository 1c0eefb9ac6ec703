package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		ext     string
		want    Model
		wantErr bool
	}{
		{
			name: "yaml",
			data: "title: Home\ntags: [a, b]\nauthor:\n  name: Ada\n",
			ext:  ".yaml",
			want: Model{
				"title":  "Home",
				"tags":   []any{"a", "b"},
				"author": map[string]any{"name": "Ada"},
			},
		},
		{name: "json", data: `{"title":"Home","count":3}`, ext: ".json", want: Model{"title": "Home", "count": json.Number("3")}},
		{name: "empty", data: "  \n", ext: ".yml", want: Model{}},
		{name: "bad yaml", data: "title: [", ext: ".yaml", wantErr: true},
		{name: "bad json", data: "{", ext: ".json", wantErr: true},
		{name: "yaml list at top level", data: "- a\n- b\n", ext: ".yaml", wantErr: true},
		{name: "unknown format", data: "x=1", ext: ".toml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.data), tt.ext)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForView(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pages", "home.yaml"), "title: Home\n")
	writeFile(t, filepath.Join(dir, "pages", "about.json"), `{"title":"About"}`)
	writeFile(t, filepath.Join(dir, "broken.yml"), "title: [")

	t.Run("yaml", func(t *testing.T) {
		m, err := ForView(dir, "pages/home.html.tmpl")
		require.NoError(t, err)
		assert.Equal(t, "Home", m["title"])
	})

	t.Run("json", func(t *testing.T) {
		m, err := ForView(dir, "pages/about.html.tmpl")
		require.NoError(t, err)
		assert.Equal(t, "About", m["title"])
	})

	t.Run("missing is empty", func(t *testing.T) {
		m, err := ForView(dir, "pages/contact.html.tmpl")
		require.NoError(t, err)
		assert.Empty(t, m)
	})

	t.Run("no models dir", func(t *testing.T) {
		m, err := ForView("", "pages/home.html.tmpl")
		require.NoError(t, err)
		assert.Empty(t, m)
	})

	t.Run("broken file", func(t *testing.T) {
		_, err := ForView(dir, "broken.html.tmpl")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "broken.yml")
	})
}

func TestPathPrefersYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "home.json"), "{}")
	writeFile(t, filepath.Join(dir, "home.yaml"), "")

	p, err := Path(dir, "home.html.tmpl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "home.yaml"), p)
}
