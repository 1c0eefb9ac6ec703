package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "./views", cfg.Templates.Dir)
	assert.Equal(t, "*.html.tmpl", cfg.Templates.Pattern)
	assert.Equal(t, "./views/models", cfg.Templates.ModelsDir)
	assert.Equal(t, 16, cfg.Render.MaxLayoutDepth)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 7331, cfg.Server.Port)
	assert.True(t, cfg.Server.LiveReload)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "localhost:7331", cfg.Server.Address())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".strata.yml")
	require.NoError(t, os.WriteFile(file, []byte(`
templates:
  dir: ./site
  models_dir: ./site/data
render:
  max_layout_depth: 4
server:
  port: 9000
  live_reload: false
logging:
  format: json
`), 0o644))

	v := viper.New()
	v.SetConfigFile(file)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "./site", cfg.Templates.Dir)
	assert.Equal(t, "./site/data", cfg.Templates.ModelsDir)
	assert.Equal(t, "*.html.tmpl", cfg.Templates.Pattern)
	assert.Equal(t, 4, cfg.Render.MaxLayoutDepth)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.False(t, cfg.Server.LiveReload)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadWithEnvironment(t *testing.T) {
	t.Setenv("STRATA_SERVER_PORT", "8123")
	t.Setenv("STRATA_TEMPLATES_DIR", "./env-views")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Server.Port)
	assert.Equal(t, "./env-views", cfg.Templates.Dir)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{name: "port out of range", key: "server.port", value: 70000},
		{name: "bad host", key: "server.host", value: "evil;rm -rf"},
		{name: "traversal", key: "templates.dir", value: "../../etc"},
		{name: "empty dir", key: "templates.dir", value: ""},
		{name: "bad pattern", key: "templates.pattern", value: "[unclosed"},
		{name: "depth", key: "render.max_layout_depth", value: 0},
		{name: "level", key: "logging.level", value: "chatty"},
		{name: "format", key: "logging.format", value: "xml"},
		{name: "not a number", key: "server.port", value: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{path: "./views", wantErr: false},
		{path: "views/pages", wantErr: false},
		{path: "views..backup", wantErr: false},
		{path: "../outside", wantErr: true},
		{path: "views/../../x", wantErr: true},
		{path: "views;ls", wantErr: true},
		{path: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := validatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetup(t *testing.T) {
	t.Run("missing default file is fine", func(t *testing.T) {
		t.Chdir(t.TempDir())
		require.NoError(t, Setup(viper.New(), ""))
	})

	t.Run("missing explicit file fails", func(t *testing.T) {
		err := Setup(viper.New(), filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})

	t.Run("default file is read", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".strata.yml"), []byte("server:\n  port: 8088\n"), 0o644))
		t.Chdir(dir)

		v := viper.New()
		require.NoError(t, Setup(v, ""))
		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, 8088, cfg.Server.Port)
	})
}
