// Package config loads strata settings with Viper from a .strata.yml file,
// STRATA_ environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override settings,
// e.g. STRATA_SERVER_PORT.
const EnvPrefix = "STRATA"

// FileName is the base name of the configuration file, without extension.
const FileName = ".strata"

type Config struct {
	Templates TemplatesConfig `mapstructure:"templates" yaml:"templates" json:"templates"`
	Render    RenderConfig    `mapstructure:"render" yaml:"render" json:"render"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server" json:"server"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging" json:"logging"`
}

type TemplatesConfig struct {
	Dir       string `mapstructure:"dir" yaml:"dir" json:"dir"`
	Pattern   string `mapstructure:"pattern" yaml:"pattern" json:"pattern"`
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir" json:"models_dir"`
}

type RenderConfig struct {
	MaxLayoutDepth int `mapstructure:"max_layout_depth" yaml:"max_layout_depth" json:"max_layout_depth"`
}

type ServerConfig struct {
	Host       string `mapstructure:"host" yaml:"host" json:"host"`
	Port       int    `mapstructure:"port" yaml:"port" json:"port"`
	LiveReload bool   `mapstructure:"live_reload" yaml:"live_reload" json:"live_reload"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Defaults lists every setting with its default value.
var Defaults = map[string]interface{}{
	"templates.dir":           "./views",
	"templates.pattern":       "*.html.tmpl",
	"templates.models_dir":    "./views/models",
	"render.max_layout_depth": 16,
	"server.host":             "localhost",
	"server.port":             7331,
	"server.live_reload":      true,
	"logging.level":           "info",
	"logging.format":          "text",
}

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// Setup wires v to the environment and reads the configuration file. An
// explicit file must exist; otherwise .strata.yml is looked up in the working
// directory and may be absent.
func Setup(v *viper.Viper, file string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

// SetDefaults registers Defaults on v.
func SetDefaults(v *viper.Viper) {
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}
}

// Load reads the configuration held by v, or by the global Viper instance
// when v is nil, and validates it.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Address returns host:port for the preview server.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
