// Package models loads the sample data views are rendered with by the CLI and
// the preview server.
//
// A view "pages/home.html.tmpl" takes its model from the first of
// pages/home.yaml, pages/home.yml or pages/home.json found in the models
// directory. Views without a model file render with an empty model.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extensions lists the model file extensions in lookup order.
var Extensions = []string{".yaml", ".yml", ".json"}

// Model is the data passed to a view.
type Model = map[string]any

// Load reads a YAML or JSON model file, chosen by extension.
func Load(file string) (Model, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	m, err := Decode(data, filepath.Ext(file))
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", file, err)
	}
	return m, nil
}

// Decode parses data as YAML, or as JSON when ext is ".json". An empty
// document is an empty model.
func Decode(data []byte, ext string) (Model, error) {
	m := Model{}
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}

	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported model format %q", ext)
	}
	return m, nil
}

// Path returns the model file for view inside dir, or "" when there is none.
func Path(dir, view string) (string, error) {
	base := strings.TrimSuffix(view, path.Ext(view))
	// Views named "x.html.tmpl" are looked up as "x".
	base = strings.TrimSuffix(base, path.Ext(base))

	for _, ext := range Extensions {
		candidate := filepath.Join(dir, filepath.FromSlash(base)+ext)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", err
		}
	}
	return "", nil
}

// ForView loads the model of view from dir. A missing model file gives an
// empty model.
func ForView(dir, view string) (Model, error) {
	if dir == "" {
		return Model{}, nil
	}
	file, err := Path(dir, view)
	if err != nil {
		return nil, err
	}
	if file == "" {
		return Model{}, nil
	}
	return Load(file)
}
