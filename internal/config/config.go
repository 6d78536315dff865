// Package config loads Folio's settings.
//
// Settings are layered, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← applied by cmd/folio
//	├─────────────────────────────┤
//	│  3. Environment (FOLIO_*)   │
//	├─────────────────────────────┤
//	│  2. Settings File (TOML)    │  ← ~/.config/folio/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// File keys are the environment names without the FOLIO_ prefix, in lower
// case: FOLIO_PAGE_WIDTH is page_width.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "FOLIO_"

// Config holds all settings.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	DBPath    string `env:"DB_PATH" envDefault:"folio.db"`
	ExportDir string `env:"EXPORT_DIR" envDefault:"."`

	ScriptDir     string        `env:"SCRIPT_DIR"`
	ScriptTimeout time.Duration `env:"SCRIPT_TIMEOUT" envDefault:"5s"`

	// Page size of the terminal view, in cells.
	PageWidth  int `env:"PAGE_WIDTH" envDefault:"60"`
	PageHeight int `env:"PAGE_HEIGHT" envDefault:"20"`

	// Smallest size a resize drag may produce, in pixels.
	MinWidth  int `env:"MIN_WIDTH" envDefault:"50"`
	MinHeight int `env:"MIN_HEIGHT" envDefault:"30"`

	// Font size in points for font-metric pagination.
	FontSize float64 `env:"FONT_SIZE" envDefault:"12"`
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// DefaultPath returns the settings file path under the user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "folio", "config.toml")
}

// Default returns the built-in defaults.
func Default() Config {
	cfg, err := parse(map[string]string{})
	if err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load builds a Config from defaults, the settings file at path and the
// process environment. A missing file is not an error.
func Load(path string) (Config, error) {
	return LoadEnv(path, env.ToMap(os.Environ()))
}

// LoadEnv is Load with an explicit environment.
func LoadEnv(path string, environ map[string]string) (Config, error) {
	merged := make(map[string]string)
	if path != "" {
		file, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		for k, v := range file {
			merged[k] = v
		}
	}
	for k, v := range environ {
		if strings.HasPrefix(k, EnvPrefix) {
			merged[k] = v
		}
	}

	cfg, err := parse(merged)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parse(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// readFile decodes the settings file into environment entries.
func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		pe := &ParseError{Path: path, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return nil, pe
	}

	known, err := knownKeys()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		name := EnvPrefix + strings.ToUpper(k)
		if !known[name] {
			return nil, &ValidationError{Field: k, Message: "unknown setting", Value: v}
		}
		switch v.(type) {
		case map[string]any, []any:
			return nil, &ValidationError{Field: k, Message: "expected a plain value", Value: v}
		}
		out[name] = fmt.Sprint(v)
	}
	return out, nil
}

func knownKeys() (map[string]bool, error) {
	params, err := env.GetFieldParamsWithOptions(&Config{}, env.Options{Prefix: EnvPrefix})
	if err != nil {
		return nil, fmt.Errorf("config fields: %w", err)
	}
	known := make(map[string]bool, len(params))
	for _, p := range params {
		known[p.Key] = true
	}
	return known, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if !logLevels[c.LogLevel] {
		errs = append(errs, &ValidationError{Field: "log_level", Message: "must be debug, info, warn or error", Value: c.LogLevel})
	}
	positive := []struct {
		field string
		value int
	}{
		{"page_width", c.PageWidth},
		{"page_height", c.PageHeight},
		{"min_width", c.MinWidth},
		{"min_height", c.MinHeight},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, &ValidationError{Field: p.field, Message: "must be positive", Value: p.value})
		}
	}
	if c.FontSize <= 0 {
		errs = append(errs, &ValidationError{Field: "font_size", Message: "must be positive", Value: c.FontSize})
	}
	if c.ScriptTimeout < 0 {
		errs = append(errs, &ValidationError{Field: "script_timeout", Message: "must not be negative", Value: c.ScriptTimeout})
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, &ValidationError{Field: "db_path", Message: "is required", Value: c.DBPath})
	}
	return errors.Join(errs...)
}
