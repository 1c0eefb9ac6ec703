package config

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/conneroisu/strata/internal/logging"
)

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateTemplatesConfig(&config.Templates); err != nil {
		return fmt.Errorf("templates config: %w", err)
	}

	if config.Render.MaxLayoutDepth < 1 {
		return fmt.Errorf("render config: max_layout_depth must be at least 1, got %d", config.Render.MaxLayoutDepth)
	}

	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateLoggingConfig(&config.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func validateTemplatesConfig(config *TemplatesConfig) error {
	if err := validatePath(config.Dir); err != nil {
		return fmt.Errorf("invalid dir '%s': %w", config.Dir, err)
	}
	if config.ModelsDir != "" {
		if err := validatePath(config.ModelsDir); err != nil {
			return fmt.Errorf("invalid models_dir '%s': %w", config.ModelsDir, err)
		}
	}
	if config.Pattern == "" {
		return fmt.Errorf("pattern must not be empty")
	}
	if _, err := path.Match(config.Pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern '%s': %w", config.Pattern, err)
	}
	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if strings.ContainsAny(config.Host, ";&|$`()<>\"'\\ ") {
		return fmt.Errorf("host contains invalid characters: %q", config.Host)
	}

	return nil
}

func validateLoggingConfig(config *LoggingConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return err
	}
	switch config.Format {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("format must be text or json, got %q", config.Format)
	}
}

// validatePath validates a file path for security
func validatePath(p string) error {
	if p == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(p)

	// Reject path traversal attempts
	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return fmt.Errorf("path contains traversal: %s", p)
		}
	}

	if strings.ContainsAny(cleanPath, ";&|$`<>\"'") {
		return fmt.Errorf("path contains dangerous characters: %s", p)
	}

	return nil
}
