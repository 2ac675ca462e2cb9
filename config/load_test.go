package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInterpolateEnv(t *testing.T) {
	getenv := func(key string) string {
		switch key {
		case "QZ_LEVEL":
			return "debug"
		case "QZ_DEPTH":
			return "100"
		default:
			return ""
		}
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple substitution",
			input:    "level: ${QZ_LEVEL}",
			expected: "level: debug",
		},
		{
			name:     "with default (env set)",
			input:    "level: ${QZ_LEVEL:-info}",
			expected: "level: debug",
		},
		{
			name:     "with default (env not set)",
			input:    "level: ${UNSET_VAR:-info}",
			expected: "level: info",
		},
		{
			name:     "multiple substitutions",
			input:    "x: ${QZ_LEVEL}-${QZ_DEPTH}",
			expected: "x: debug-100",
		},
		{
			name:     "no substitution needed",
			input:    "static: value",
			expected: "static: value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := string(interpolateEnv([]byte(tt.input), getenv))
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "quetzal.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
interprete:
  max_profundidad: ${QZ_DEPTH:-128}
logging:
  level: debug
  format: json
  output: logs/quetzal.log
repl:
  historial: .historial
vigilar:
  rutas: datos.jsn
`)
	getenv := func(string) string { return "" }

	cfg, resolved, err := LoadWithPath(path, getenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	dir := filepath.Dir(resolved)

	if cfg.Interpreter.MaxDepth != 128 {
		t.Errorf("expected max depth 128, got %d", cfg.Interpreter.MaxDepth)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.BaseDir != dir {
		t.Errorf("expected base dir %q, got %q", dir, cfg.BaseDir)
	}
	if want := filepath.Join(dir, ".historial"); cfg.REPL.History != want {
		t.Errorf("expected history %q, got %q", want, cfg.REPL.History)
	}
	if want := filepath.Join(dir, "logs", "quetzal.log"); cfg.Logging.Output != want {
		t.Errorf("expected log output %q, got %q", want, cfg.Logging.Output)
	}
	if len(cfg.Watch.Extra) != 1 || cfg.Watch.Extra[0] != filepath.Join(dir, "datos.jsn") {
		t.Errorf("unexpected watch paths %v", cfg.Watch.Extra)
	}
}

func TestLoadHomeRelativeHistory(t *testing.T) {
	path := writeConfig(t, "repl:\n  historial: ~/.quetzal_historial\n")
	getenv := func(key string) string {
		if key == "HOME" {
			return "/home/ana"
		}
		return ""
	}
	cfg, err := Load(path, getenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if want := filepath.Join("/home/ana", ".quetzal_historial"); cfg.REPL.History != want {
		t.Errorf("expected %q, got %q", want, cfg.REPL.History)
	}
}

func TestLoadFromEnvVariable(t *testing.T) {
	path := writeConfig(t, "consola:\n  color: siempre\n")
	getenv := func(key string) string {
		if key == "QUETZAL_CONFIG" {
			return path
		}
		return ""
	}
	cfg, resolved, err := LoadWithPath("", getenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if resolved == "" || cfg.Console.Color != "siempre" {
		t.Errorf("expected config from QUETZAL_CONFIG, got path %q color %q", resolved, cfg.Console.Color)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	getenv := func(string) string { return "" }

	cfg, path, err := LoadWithPath("", getenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if path != "" {
		t.Errorf("expected no config path, got %q", path)
	}
	if cfg.Interpreter.MaxDepth != Defaults().Interpreter.MaxDepth {
		t.Errorf("expected defaults, got %+v", cfg.Interpreter)
	}
}

func TestLoadErrors(t *testing.T) {
	getenv := func(string) string { return "" }

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), getenv); err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("expected not found error, got %v", err)
	}

	missingEnv := func(key string) string {
		if key == "QUETZAL_CONFIG" {
			return "/no/such/quetzal.yaml"
		}
		return ""
	}
	if _, err := Load("", missingEnv); err == nil || !strings.Contains(err.Error(), "QUETZAL_CONFIG") {
		t.Errorf("expected QUETZAL_CONFIG error, got %v", err)
	}

	path := writeConfig(t, "interprete: [\n")
	if _, err := Load(path, getenv); err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "zero depth",
			modify:  func(c *Config) { c.Interpreter.MaxDepth = 0 },
			wantErr: "max_profundidad",
		},
		{
			name:    "unknown color mode",
			modify:  func(c *Config) { c.Console.Color = "a veces" },
			wantErr: "consola.color",
		},
		{
			name:    "bad language tag",
			modify:  func(c *Config) { c.Console.Language = "no es un idioma!" },
			wantErr: "consola.idioma",
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "bad log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid log format",
		},
		{
			name:    "negative debounce",
			modify:  func(c *Config) { c.Watch.Debounce = -1 },
			wantErr: "vigilar.espera",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidationReportsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := strings.Count(err.Error(), "\n  - "); got != 2 {
		t.Errorf("expected 2 listed errors, got %d: %v", got, err)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
