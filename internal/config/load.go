package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"csvimport/internal/errs"
)

// Format selects the config file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension; anything other
// than .yaml or .yml is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and decodes the config file at path. An empty path returns
// Default(). The result is not validated; see ValidateConfig.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errs.Wrap(errs.KindConfiguration, "open config", err)
	}
	defer f.Close()

	cfg, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads one config document from r on top of Default(). Unknown keys
// are rejected so typos do not silently fall back to defaults.
func Decode(r io.Reader, format Format) (Config, error) {
	cfg := Default()

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, errs.Wrap(errs.KindConfiguration, "decode yaml config", err)
		}
	case FormatJSON, "":
		data, err := io.ReadAll(r)
		if err != nil {
			return Config{}, errs.Wrap(errs.KindConfiguration, "read config", err)
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return cfg, nil
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, errs.Wrap(errs.KindConfiguration, "decode json config", err)
		}
	default:
		return Config{}, errs.Newf(errs.KindConfiguration, "unsupported config format %q", format)
	}
	return cfg, nil
}
