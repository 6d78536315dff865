package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	want := Config{
		LogLevel:      "info",
		DBPath:        "folio.db",
		ExportDir:     ".",
		ScriptTimeout: 5 * time.Second,
		PageWidth:     60,
		PageHeight:    20,
		MinWidth:      50,
		MinHeight:     30,
		FontSize:      12,
	}
	if cfg != want {
		t.Errorf("Default() = %+v, want %+v", cfg, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadLayers(t *testing.T) {
	path := writeFile(t, `
page_width = 72
log_level = "debug"
script_timeout = "2s"
font_size = 10.5
`)
	cfg, err := LoadEnv(path, map[string]string{
		"FOLIO_PAGE_WIDTH": "80",
		"FOLIO_MIN_HEIGHT": "40",
		"HOME":             "/ignored",
	})
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"env beats file", cfg.PageWidth, 80},
		{"file beats default", cfg.LogLevel, "debug"},
		{"file duration", cfg.ScriptTimeout, 2 * time.Second},
		{"file float", cfg.FontSize, 10.5},
		{"env only", cfg.MinHeight, 40},
		{"default", cfg.PageHeight, 20},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := LoadEnv(filepath.Join(t.TempDir(), "none.toml"), nil)
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("LoadEnv() = %+v, want defaults", cfg)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeFile(t, `tab_size = 4`)
	_, err := LoadEnv(path, nil)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "tab_size" {
		t.Fatalf("LoadEnv() error = %v, want unknown setting", err)
	}
	if !errors.Is(err, ErrInvalid) {
		t.Error("error does not match ErrInvalid")
	}
}

func TestLoadTable(t *testing.T) {
	path := writeFile(t, "[page_width]\nx = 1\n")
	if _, err := LoadEnv(path, nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("LoadEnv() error = %v, want ErrInvalid", err)
	}
}

func TestLoadParseError(t *testing.T) {
	path := writeFile(t, "page_width = = 3\n")
	_, err := LoadEnv(path, nil)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("LoadEnv() error = %v, want ParseError", err)
	}
	if pe.Path != path || pe.Line != 1 {
		t.Errorf("ParseError = %+v", pe)
	}
}

func TestLoadBadEnv(t *testing.T) {
	if _, err := LoadEnv("", map[string]string{"FOLIO_PAGE_WIDTH": "wide"}); err == nil {
		t.Error("LoadEnv() accepted a non-numeric width")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"page width", func(c *Config) { c.PageWidth = 0 }, "page_width"},
		{"min height", func(c *Config) { c.MinHeight = -1 }, "min_height"},
		{"font size", func(c *Config) { c.FontSize = 0 }, "font_size"},
		{"script timeout", func(c *Config) { c.ScriptTimeout = -time.Second }, "script_timeout"},
		{"db path", func(c *Config) { c.DBPath = " " }, "db_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("Validate() = %v, want error on %s", err, tt.field)
			}
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	tests := []struct {
		err  *ParseError
		want string
	}{
		{&ParseError{Path: "a.toml", Line: 2, Column: 3, Message: "bad"}, "parse error in a.toml at line 2, column 3: bad"},
		{&ParseError{Path: "a.toml", Line: 2, Message: "bad"}, "parse error in a.toml at line 2: bad"},
		{&ParseError{Path: "a.toml", Message: "bad"}, "parse error in a.toml: bad"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
